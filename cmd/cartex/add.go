package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/bloom"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	seen := bloom.NewFilter(uint(max(len(c.URLs), 16)), 0.001)
	timeout := captureTimeout(c.Timeout, deps)

	var added, failed int
	for _, rawURL := range c.URLs {
		if seen.Seen(rawURL) {
			fmt.Fprintf(deps.Stdout, "  skip %s: duplicate\n", rawURL)
			continue
		}

		item, err := c.capture(deps, rawURL, timeout)
		if err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", rawURL, cartex.ErrorMessage(err))
			continue
		}
		added++
		fmt.Fprintf(deps.Stdout, "Added %q %s (%s)\n", item.Title, item.Price, item.ID)
	}

	if added == 0 && failed > 0 {
		return cartex.Errorf(cartex.EINVALID, "no products added")
	}
	return nil
}

func (c *AddCmd) capture(deps *Dependencies, rawURL string, timeout time.Duration) (*cartex.CartItem, error) {
	ctx, cancel := context.WithTimeout(deps.Ctx, timeout)
	defer cancel()

	result, err := deps.Capturer.Capture(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	item := cartex.NewCartItem(result)
	if err := deps.Cart.AddItem(deps.Ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func captureTimeout(flag time.Duration, deps *Dependencies) time.Duration {
	if flag > 0 {
		return flag
	}
	if deps.Timeout > 0 {
		return deps.Timeout
	}
	return 5 * time.Second
}
