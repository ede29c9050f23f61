//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ cartex.Fetcher = (*rod.Fetcher)(nil)

// storefront serves a product page whose price and stock are filled in by
// script, and counts requests for the product photo.
func storefront(t *testing.T, photoHits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products/lamp", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Brass Lamp</title></head>
<body>
<img id="photo" src="/img/lamp.png" alt="Brass Lamp">
<span class="price" id="price"></span>
<div id="stock">Checking stock...</div>
<script>
document.getElementById('price').textContent = '$' + (2499 / 100).toFixed(2);
document.getElementById('stock').textContent = 'In stock';
</script>
</body>
</html>`))
	})
	mux.HandleFunc("/img/lamp.png", func(w http.ResponseWriter, r *http.Request) {
		photoHits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`<html><body>$5.00</body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns script-rendered price and stock", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := storefront(t, &hits)
		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), srv.URL+"/products/lamp")

		require.NoError(t, err)
		assert.Contains(t, html, "$24.99")
		assert.Contains(t, html, "In stock")
		assert.NotContains(t, html, "Checking stock...")
	})

	t.Run("skips image downloads by default", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := storefront(t, &hits)
		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), srv.URL+"/products/lamp")

		require.NoError(t, err)
		assert.Contains(t, html, `src="/img/lamp.png"`)
		assert.Zero(t, hits.Load())
	})

	t.Run("downloads images when enabled", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := storefront(t, &hits)
		fetcher, err := rod.NewFetcher(rod.WithImageLoading(true))
		require.NoError(t, err)
		defer fetcher.Close()

		_, err = fetcher.Fetch(context.Background(), srv.URL+"/products/lamp")

		require.NoError(t, err)
		assert.Positive(t, hits.Load())
	})

	t.Run("stops at the render timeout", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := storefront(t, &hits)
		fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(200 * time.Millisecond))
		require.NoError(t, err)
		defer fetcher.Close()

		begin := time.Now()
		_, err = fetcher.Fetch(context.Background(), srv.URL+"/slow")

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(begin), 1500*time.Millisecond)
	})

	t.Run("honors a canceled context", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := storefront(t, &hits)
		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = fetcher.Fetch(ctx, srv.URL+"/products/lamp")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("relaunches the browser after the recycling budget", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := storefront(t, &hits)
		fetcher, err := rod.NewFetcher(rod.WithBrowserRecycling(1))
		require.NoError(t, err)
		defer fetcher.Close()

		first := fetcher.LauncherPID()
		_, err = fetcher.Fetch(context.Background(), srv.URL+"/products/lamp")
		require.NoError(t, err)
		html, err := fetcher.Fetch(context.Background(), srv.URL+"/products/lamp")
		require.NoError(t, err)

		assert.Contains(t, html, "$24.99")
		assert.NotEqual(t, first, fetcher.LauncherPID())
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("rejects fetches once closed", func(t *testing.T) {
		t.Parallel()

		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)
		require.NoError(t, fetcher.Close())

		_, err = fetcher.Fetch(context.Background(), "https://shop.example.com/products/lamp")

		assert.Equal(t, cartex.EINVALID, cartex.ErrorCode(err))
		assert.Equal(t, "fetcher is closed", cartex.ErrorMessage(err))
		assert.Zero(t, fetcher.LauncherPID())
	})

	t.Run("can be called twice", func(t *testing.T) {
		t.Parallel()

		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)

		require.NoError(t, fetcher.Close())
		assert.NoError(t, fetcher.Close())
	})
}
