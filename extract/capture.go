package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/cartex"
)

// Ensure Capturer implements cartex.Capturer at compile time.
var _ cartex.Capturer = (*Capturer)(nil)

// ParseFunc turns fetched HTML into a Page rooted at u.
type ParseFunc func(html string, u *url.URL) (cartex.Page, error)

// Capturer fetches product pages and extracts them.
type Capturer struct {
	Fetcher   cartex.Fetcher
	Extractor cartex.Extractor
	Parse     ParseFunc

	// Limiter, when set, is waited on per host before each capture.
	Limiter cartex.DomainLimiter

	// RetryDelays are the backoff delays between fetch attempts.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// NewCapturer creates a Capturer using DefaultRetryDelays.
func NewCapturer(fetcher cartex.Fetcher, extractor cartex.Extractor, parse ParseFunc) *Capturer {
	return &Capturer{
		Fetcher:     fetcher,
		Extractor:   extractor,
		Parse:       parse,
		RetryDelays: DefaultRetryDelays(),
	}
}

// Capture fetches rawURL and extracts the product it describes.
func (c *Capturer) Capture(ctx context.Context, rawURL string) (*cartex.Result, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, cartex.Errorf(cartex.EINVALID, "invalid URL %q", rawURL)
	}
	if err := ValidateURL(u); err != nil {
		return nil, err
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, c.fetchError(u, err)
		}
	}

	html, err := FetchWithRetry(ctx, u.String(), c.Fetcher.Fetch, c.RetryDelays, c.Logger)
	if err != nil {
		return nil, c.fetchError(u, err)
	}

	page, err := c.Parse(html, u)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	return c.Extractor.Extract(ctx, page)
}

func (c *Capturer) fetchError(u *url.URL, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return cartex.Errorf(cartex.ETIMEOUT, "capture of %s timed out", u)
	}
	return fmt.Errorf("fetch %s: %w", u, err)
}
