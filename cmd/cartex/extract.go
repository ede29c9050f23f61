package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/cartex"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	ctx, cancel := context.WithTimeout(deps.Ctx, captureTimeout(c.Timeout, deps))
	defer cancel()

	result, err := deps.Capturer.Capture(ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cartex.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
