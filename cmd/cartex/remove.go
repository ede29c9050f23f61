package main

import (
	"fmt"

	"github.com/fwojciec/cartex"
)

// Run executes the remove command.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	if err := deps.Cart.DeleteItem(deps.Ctx, c.ID); err != nil {
		if cartex.ErrorCode(err) == cartex.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: item %q not found. Use 'cartex list' to see cart items.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", cartex.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %s\n", c.ID)
	return nil
}
