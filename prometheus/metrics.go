// Package prometheus exports extraction metrics with the Prometheus client.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cartex"

// Ensure types implement their interfaces at compile time.
var (
	_ cartex.StrategyObserver = (*Metrics)(nil)
	_ cartex.Extractor        = (*Extractor)(nil)
)

// Metrics owns a dedicated registry and the collectors registered in it.
type Metrics struct {
	registry         *prometheus.Registry
	strategyOutcomes *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	extractions      *prometheus.CounterVec
	extractDuration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them in a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		strategyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_outcomes_total",
			Help:      "Strategy runs by outcome.",
		}, []string{"strategy", "kind", "outcome"}),
		strategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "strategy_duration_seconds",
			Help:      "Time spent in a single strategy run.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"strategy", "kind"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Completed extractions by price availability.",
		}, []string{"price"}),
		extractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting one page.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.strategyOutcomes, m.strategyDuration, m.extractions, m.extractDuration)
	return m
}

// ObserveStrategy records one strategy run.
func (m *Metrics) ObserveStrategy(name string, kind cartex.Kind, outcome cartex.Outcome, d time.Duration) {
	m.strategyOutcomes.WithLabelValues(name, string(kind), string(outcome)).Inc()
	m.strategyDuration.WithLabelValues(name, string(kind)).Observe(d.Seconds())
}

// Registry returns the registry holding the cartex collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Extractor wraps an Extractor and counts completed extractions.
type Extractor struct {
	next    cartex.Extractor
	metrics *Metrics
}

// NewExtractor creates a new Extractor.
func NewExtractor(next cartex.Extractor, metrics *Metrics) *Extractor {
	return &Extractor{next: next, metrics: metrics}
}

// Extract delegates to the wrapped extractor and records the outcome.
func (e *Extractor) Extract(ctx context.Context, page cartex.Page) (*cartex.Result, error) {
	begin := time.Now()
	result, err := e.next.Extract(ctx, page)
	if err != nil {
		return nil, err
	}
	e.metrics.extractDuration.Observe(time.Since(begin).Seconds())
	label := "available"
	if !result.Price.Available() {
		label = "unavailable"
	}
	e.metrics.extractions.WithLabelValues(label).Inc()
	return result, nil
}
