package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/cartex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	items, err := deps.Cart.FindItems(deps.Ctx, cartex.CartFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cartex.ErrorMessage(err))
		return err
	}

	subtotals := cartex.Subtotals(items)

	if c.JSON {
		totals := make([]string, len(subtotals))
		for i, s := range subtotals {
			totals[i] = s.String()
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(struct {
			Items     []*cartex.CartItem `json:"items"`
			Subtotals []string           `json:"subtotals"`
		}{Items: items, Subtotals: totals})
	}

	if len(items) == 0 {
		fmt.Fprintln(deps.Stdout, "Cart is empty. Use 'cartex add' to capture a product.")
		return nil
	}

	for _, item := range items {
		fmt.Fprintf(deps.Stdout, "%s  %-12s  %s  %s\n", item.ID, item.Price, item.Title, item.URL)
	}

	if len(subtotals) > 0 {
		totals := make([]string, len(subtotals))
		for i, s := range subtotals {
			totals[i] = s.String()
		}
		fmt.Fprintf(deps.Stdout, "Subtotal: %s\n", strings.Join(totals, ", "))
	}
	return nil
}
