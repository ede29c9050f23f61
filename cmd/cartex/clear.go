package main

import (
	"fmt"

	"github.com/fwojciec/cartex"
)

// Run executes the clear command.
func (c *ClearCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm removal\n")
		return cartex.Errorf(cartex.EINVALID, "use --force to confirm removal")
	}

	if err := deps.Cart.ClearItems(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cartex.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Cart cleared")
	return nil
}
