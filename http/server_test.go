package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/capture"
	cartexhttp "github.com/fwojciec/cartex/http"
	"github.com/fwojciec/cartex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lamp = &cartex.Result{
	Title: "Brass Lamp",
	Price: cartex.ParsePrice("$19.99"),
	Image: "https://cdn.example.com/lamp.jpg",
	URL:   "https://shop.example.com/lamp",
}

func newServer(t *testing.T, capturer cartex.Capturer, cart cartex.CartService) *httptest.Server {
	t.Helper()
	router := capture.NewRouter(capturer)
	srv := httptest.NewServer(cartexhttp.NewServer(router, cart, http.NotFoundHandler(), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, client, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if client != "" {
		req.Header.Set(cartexhttp.ClientHeader, client)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_Capture(t *testing.T) {
	t.Parallel()

	capturer := &mock.Capturer{
		CaptureFn: func(ctx context.Context, rawURL string) (*cartex.Result, error) {
			if rawURL == "bad" {
				return nil, cartex.Errorf(cartex.EINVALID, "URL must be absolute")
			}
			return lamp, nil
		},
	}

	t.Run("captures for connected clients", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, capturer, &mock.CartService{})

		resp, _ := do(t, http.MethodPost, srv.URL+"/connect", "tab-1", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := do(t, http.MethodPost, srv.URL+"/capture", "tab-1", `{"id":"req-9","url":"https://shop.example.com/lamp"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "req-9", body["id"])
		assert.Equal(t, true, body["success"])
		result := body["result"].(map[string]any)
		assert.Equal(t, "Brass Lamp", result["title"])
		assert.Equal(t, "$19.99", result["price"])
	})

	t.Run("reports disconnected clients", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, capturer, &mock.CartService{})

		resp, body := do(t, http.MethodPost, srv.URL+"/capture", "tab-2", `{"url":"https://shop.example.com/lamp"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, capture.CodeDisconnected, body["code"])
		assert.Equal(t, capture.DisconnectedMessage, body["error"])
		assert.NotEmpty(t, body["id"], "response should carry a correlation ID")
	})

	t.Run("keeps links per client", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, capturer, &mock.CartService{})
		do(t, http.MethodPost, srv.URL+"/connect", "tab-a", "")

		resp, _ := do(t, http.MethodPost, srv.URL+"/capture", "tab-b", `{"url":"https://shop.example.com/lamp"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("maps invalid URLs to bad request", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, capturer, &mock.CartService{})
		do(t, http.MethodPost, srv.URL+"/connect", "tab-3", "")

		resp, body := do(t, http.MethodPost, srv.URL+"/capture", "tab-3", `{"url":"bad"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, capture.CodeInvalidURL, body["code"])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, capturer, &mock.CartService{})

		resp, body := do(t, http.MethodPost, srv.URL+"/capture", "tab-4", `{"url":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, cartex.EINVALID, body["code"])
	})

	t.Run("ping reports health", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, capturer, &mock.CartService{})
		do(t, http.MethodPost, srv.URL+"/connect", "tab-5", "")

		resp, body := do(t, http.MethodGet, srv.URL+"/ping", "tab-5", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "pong", body["type"])
		assert.Equal(t, "healthy", body["status"])
	})
}

func TestServer_Links(t *testing.T) {
	t.Parallel()

	t.Run("handles requests from one client in turn", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		capturer := &mock.Capturer{
			CaptureFn: func(ctx context.Context, rawURL string) (*cartex.Result, error) {
				close(started)
				<-release
				return lamp, nil
			},
		}
		srv := newServer(t, capturer, &mock.CartService{})
		do(t, http.MethodPost, srv.URL+"/connect", "tab-1", "")

		captured := make(chan int)
		go func() {
			resp, _ := do(t, http.MethodPost, srv.URL+"/capture", "tab-1", `{"url":"https://shop.example.com/lamp"}`)
			captured <- resp.StatusCode
		}()
		<-started

		pinged := make(chan string)
		go func() {
			_, body := do(t, http.MethodGet, srv.URL+"/ping", "tab-1", "")
			pinged <- body["status"].(string)
		}()

		select {
		case <-pinged:
			t.Fatal("ping finished while a capture for the same client was in flight")
		case <-time.After(100 * time.Millisecond):
		}

		close(release)
		assert.Equal(t, http.StatusOK, <-captured)
		assert.Equal(t, "healthy", <-pinged)
	})

	t.Run("forgets clients whose link died", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		router := capture.NewRouter(&mock.Capturer{})
		router.Now = func() time.Time { return now }
		s := cartexhttp.NewServer(router, &mock.CartService{}, nil, nil)
		h := s.Handler()

		for _, id := range []string{"tab-1", "tab-2"} {
			req := httptest.NewRequest(http.MethodPost, "/connect", nil)
			req.Header.Set(cartexhttp.ClientHeader, id)
			h.ServeHTTP(httptest.NewRecorder(), req)
		}
		require.Equal(t, 2, s.Clients())

		now = now.Add(3 * capture.KeepaliveInterval)
		s.Prune()

		assert.Equal(t, 0, s.Clients())
	})

	t.Run("does not store unknown clients", func(t *testing.T) {
		t.Parallel()

		s := cartexhttp.NewServer(capture.NewRouter(&mock.Capturer{}), &mock.CartService{}, nil, nil)
		h := s.Handler()

		for _, id := range []string{"a", "b", "c"} {
			req := httptest.NewRequest(http.MethodPost, "/capture", strings.NewReader(`{"url":"https://shop.example.com/lamp"}`))
			req.Header.Set(cartexhttp.ClientHeader, id)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusConflict, rec.Code)
		}

		assert.Equal(t, 0, s.Clients())
	})
}

func TestServer_Cart(t *testing.T) {
	t.Parallel()

	t.Run("lists items with subtotals", func(t *testing.T) {
		t.Parallel()

		cart := &mock.CartService{
			FindItemsFn: func(ctx context.Context, filter cartex.CartFilter) ([]*cartex.CartItem, error) {
				return []*cartex.CartItem{
					{ID: "1", Title: "Lamp", Price: cartex.ParsePrice("$19.99"), URL: "https://a.example.com/1", AddedAt: time.Now()},
					{ID: "2", Title: "Chair", Price: cartex.Unavailable(), URL: "https://a.example.com/2", AddedAt: time.Now()},
					{ID: "3", Title: "Desk", Price: cartex.ParsePrice("$100.01"), URL: "https://a.example.com/3", AddedAt: time.Now()},
				}, nil
			},
		}
		srv := newServer(t, &mock.Capturer{}, cart)

		resp, body := do(t, http.MethodGet, srv.URL+"/cart", "", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["items"], 3)
		assert.Equal(t, []any{"$120.00"}, body["subtotals"])
	})

	t.Run("adds captured result", func(t *testing.T) {
		t.Parallel()

		var saved *cartex.CartItem
		cart := &mock.CartService{
			AddItemFn: func(ctx context.Context, item *cartex.CartItem) error {
				item.ID = "new-id"
				saved = item
				return nil
			},
		}
		srv := newServer(t, &mock.Capturer{}, cart)

		resp, body := do(t, http.MethodPost, srv.URL+"/cart", "",
			`{"title":"Brass Lamp","price":"$19.99","image":"https://cdn.example.com/lamp.jpg","url":"https://shop.example.com/lamp"}`)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "new-id", body["id"])
		require.NotNil(t, saved)
		assert.Equal(t, "$19.99", saved.Price.String())
	})

	t.Run("reports validation errors", func(t *testing.T) {
		t.Parallel()

		cart := &mock.CartService{
			AddItemFn: func(ctx context.Context, item *cartex.CartItem) error {
				return item.Validate()
			},
		}
		srv := newServer(t, &mock.Capturer{}, cart)

		resp, body := do(t, http.MethodPost, srv.URL+"/cart", "", `{"title":"Lamp"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "cart item URL required", body["error"])
	})

	t.Run("deletes one item", func(t *testing.T) {
		t.Parallel()

		var deleted string
		cart := &mock.CartService{
			DeleteItemFn: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
		}
		srv := newServer(t, &mock.Capturer{}, cart)

		resp, _ := do(t, http.MethodDelete, srv.URL+"/cart/abc-123", "", "")

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "abc-123", deleted)
	})

	t.Run("returns not found for missing items", func(t *testing.T) {
		t.Parallel()

		cart := &mock.CartService{
			DeleteItemFn: func(ctx context.Context, id string) error {
				return cartex.Errorf(cartex.ENOTFOUND, "cart item not found")
			},
		}
		srv := newServer(t, &mock.Capturer{}, cart)

		resp, body := do(t, http.MethodDelete, srv.URL+"/cart/missing", "", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, cartex.ENOTFOUND, body["code"])
	})

	t.Run("clears the cart", func(t *testing.T) {
		t.Parallel()

		cleared := false
		cart := &mock.CartService{
			ClearItemsFn: func(ctx context.Context) error {
				cleared = true
				return nil
			},
		}
		srv := newServer(t, &mock.Capturer{}, cart)

		resp, _ := do(t, http.MethodDelete, srv.URL+"/cart", "", "")

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.True(t, cleared)
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, cartexhttp.ErrorStatusCode(cartex.ENOTFOUND))
	assert.Equal(t, http.StatusBadRequest, cartexhttp.ErrorStatusCode(cartex.EINVALID))
	assert.Equal(t, http.StatusInternalServerError, cartexhttp.ErrorStatusCode("unknown"))
}
