package extract_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/extract"
	"github.com/fwojciec/cartex/goquery"
	"github.com/fwojciec/cartex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(html string, u *url.URL) (cartex.Page, error) {
	return goquery.NewPage(html, u.String())
}

func TestCapturer_Capture(t *testing.T) {
	t.Parallel()

	t.Run("fetches and extracts the page", func(t *testing.T) {
		t.Parallel()

		var waited string
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return `<body><h1>Brass Lamp</h1><span class="price">$19.99</span></body>`, nil
			},
		}
		c := extract.NewCapturer(fetcher, newEngine(t), parse)
		c.Limiter = &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				waited = domain
				return nil
			},
		}

		result, err := c.Capture(context.Background(), " "+shopURL+" ")

		require.NoError(t, err)
		assert.Equal(t, "Brass Lamp", result.Title)
		assert.Equal(t, "$19.99", result.Price.String())
		assert.Equal(t, "shop.example.com", waited)
	})

	t.Run("rejects invalid URLs without fetching", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				t.Fatal("unexpected fetch")
				return "", nil
			},
		}
		c := extract.NewCapturer(fetcher, newEngine(t), parse)

		for _, raw := range []string{"", "not a url", "chrome://extensions", "http://[::1"} {
			_, err := c.Capture(context.Background(), raw)
			assert.Equal(t, cartex.EINVALID, cartex.ErrorCode(err), raw)
		}
	})

	t.Run("retries transient fetch errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				attempts++
				if attempts < 3 {
					return "", errors.New("connection reset")
				}
				return `<body><h1>Lamp</h1></body>`, nil
			},
		}
		c := extract.NewCapturer(fetcher, newEngine(t), parse)
		c.RetryDelays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

		result, err := c.Capture(context.Background(), shopURL)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, "Lamp", result.Title)
	})

	t.Run("returns fetch error after retries", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("HTTP 503")
			},
		}
		c := extract.NewCapturer(fetcher, newEngine(t), parse)
		c.RetryDelays = nil

		_, err := c.Capture(context.Background(), shopURL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 503")
		assert.Equal(t, cartex.EINTERNAL, cartex.ErrorCode(err))
	})

	t.Run("classifies deadline as timeout", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		}
		c := extract.NewCapturer(fetcher, newEngine(t), parse)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := c.Capture(ctx, shopURL)

		assert.Equal(t, cartex.ETIMEOUT, cartex.ErrorCode(err))
	})
}
