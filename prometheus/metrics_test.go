package prometheus_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/mock"
	cartexprom "github.com/fwojciec/cartex/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveStrategy(t *testing.T) {
	t.Parallel()

	t.Run("counts outcomes per strategy", func(t *testing.T) {
		t.Parallel()

		m := cartexprom.NewMetrics()
		m.ObserveStrategy("jsonld-price", cartex.KindPrice, cartex.OutcomeHit, 3*time.Millisecond)
		m.ObserveStrategy("jsonld-price", cartex.KindPrice, cartex.OutcomeHit, 2*time.Millisecond)
		m.ObserveStrategy("amazon-price", cartex.KindPrice, cartex.OutcomeTimeout, 500*time.Millisecond)

		expected := `
# HELP cartex_strategy_outcomes_total Strategy runs by outcome.
# TYPE cartex_strategy_outcomes_total counter
cartex_strategy_outcomes_total{kind="price",outcome="hit",strategy="jsonld-price"} 2
cartex_strategy_outcomes_total{kind="price",outcome="timeout",strategy="amazon-price"} 1
`
		err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "cartex_strategy_outcomes_total")
		require.NoError(t, err)
	})
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("counts extractions by price availability", func(t *testing.T) {
		t.Parallel()

		m := cartexprom.NewMetrics()
		results := []*cartex.Result{
			{Title: "Lamp", Price: cartex.ParsePrice("$19.99")},
			{Title: "Chair", Price: cartex.Unavailable()},
			{Title: "Desk", Price: cartex.ParsePrice("$120.00")},
		}
		i := 0
		inner := &mock.Extractor{
			ExtractFn: func(ctx context.Context, page cartex.Page) (*cartex.Result, error) {
				r := results[i]
				i++
				return r, nil
			},
		}
		ext := cartexprom.NewExtractor(inner, m)

		for range results {
			_, err := ext.Extract(context.Background(), &mock.Page{})
			require.NoError(t, err)
		}

		expected := `
# HELP cartex_extractions_total Completed extractions by price availability.
# TYPE cartex_extractions_total counter
cartex_extractions_total{price="available"} 2
cartex_extractions_total{price="unavailable"} 1
`
		err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "cartex_extractions_total")
		require.NoError(t, err)
	})

	t.Run("does not count invalid pages", func(t *testing.T) {
		t.Parallel()

		m := cartexprom.NewMetrics()
		inner := &mock.Extractor{
			ExtractFn: func(ctx context.Context, page cartex.Page) (*cartex.Result, error) {
				return nil, cartex.Errorf(cartex.EINVALID, "URL must be absolute")
			},
		}

		_, err := cartexprom.NewExtractor(inner, m).Extract(context.Background(), &mock.Page{})

		assert.Equal(t, cartex.EINVALID, cartex.ErrorCode(err))
		n, err := testutil.GatherAndCount(m.Registry(), "cartex_extractions_total")
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := cartexprom.NewMetrics()
	m.ObserveStrategy("og-title", cartex.KindTitle, cartex.OutcomeMiss, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cartex_strategy_outcomes_total{kind="title",outcome="miss",strategy="og-title"} 1`)
}
