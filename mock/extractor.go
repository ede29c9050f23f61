package mock

import (
	"context"

	"github.com/fwojciec/cartex"
)

var (
	_ cartex.Extractor = (*Extractor)(nil)
	_ cartex.Capturer  = (*Capturer)(nil)
)

// Extractor is a mock implementation of cartex.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, page cartex.Page) (*cartex.Result, error)
}

func (e *Extractor) Extract(ctx context.Context, page cartex.Page) (*cartex.Result, error) {
	return e.ExtractFn(ctx, page)
}

// Capturer is a mock implementation of cartex.Capturer.
type Capturer struct {
	CaptureFn func(ctx context.Context, rawURL string) (*cartex.Result, error)
}

func (c *Capturer) Capture(ctx context.Context, rawURL string) (*cartex.Result, error) {
	return c.CaptureFn(ctx, rawURL)
}
