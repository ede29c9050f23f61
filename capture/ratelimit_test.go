package capture_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements cartex.DomainLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ cartex.DomainLimiter = capture.NewDomainLimiter(1)
	})

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := capture.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "shop.example.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("hosts of one site share a limit", func(t *testing.T) {
		t.Parallel()

		limiter := capture.NewDomainLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "www.amazon.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "smile.amazon.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different sites have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := capture.NewDomainLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "www.amazon.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "www.ebay.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond, "different site should not wait")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := capture.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "example.com"), "should fail when context times out")
	})

	t.Run("concurrent requests are serialized per site", func(t *testing.T) {
		t.Parallel()

		limiter := capture.NewDomainLimiter(100)

		var wg sync.WaitGroup
		var completed atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background(), "example.com"); err == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load(), "all requests should complete")
	})
}
