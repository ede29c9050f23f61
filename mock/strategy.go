package mock

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/cartex"
)

var (
	_ cartex.Strategy         = (*Strategy)(nil)
	_ cartex.StrategyRegistry = (*StrategyRegistry)(nil)
	_ cartex.StrategyObserver = (*StrategyObserver)(nil)
	_ cartex.PlatformDetector = (*PlatformDetector)(nil)
)

// Strategy is a mock implementation of cartex.Strategy.
type Strategy struct {
	NameFn     func() string
	KindFn     func() cartex.Kind
	FallbackFn func() bool
	ExtractFn  func(ctx context.Context, page cartex.Page) (cartex.Raw, error)
}

func (s *Strategy) Name() string {
	return s.NameFn()
}

func (s *Strategy) Kind() cartex.Kind {
	return s.KindFn()
}

func (s *Strategy) Fallback() bool {
	return s.FallbackFn()
}

func (s *Strategy) Extract(ctx context.Context, page cartex.Page) (cartex.Raw, error) {
	return s.ExtractFn(ctx, page)
}

// StrategyRegistry is a mock implementation of cartex.StrategyRegistry.
type StrategyRegistry struct {
	RegisterFn      func(s cartex.Strategy)
	StrategiesForFn func(kind cartex.Kind, profile *cartex.SiteProfile) []cartex.Strategy
	ProfileForFn    func(u *url.URL) *cartex.SiteProfile
}

func (r *StrategyRegistry) Register(s cartex.Strategy) {
	r.RegisterFn(s)
}

func (r *StrategyRegistry) StrategiesFor(kind cartex.Kind, profile *cartex.SiteProfile) []cartex.Strategy {
	return r.StrategiesForFn(kind, profile)
}

func (r *StrategyRegistry) ProfileFor(u *url.URL) *cartex.SiteProfile {
	return r.ProfileForFn(u)
}

// StrategyObserver is a mock implementation of cartex.StrategyObserver.
type StrategyObserver struct {
	ObserveStrategyFn func(name string, kind cartex.Kind, outcome cartex.Outcome, d time.Duration)
}

func (o *StrategyObserver) ObserveStrategy(name string, kind cartex.Kind, outcome cartex.Outcome, d time.Duration) {
	o.ObserveStrategyFn(name, kind, outcome, d)
}

// PlatformDetector is a mock implementation of cartex.PlatformDetector.
type PlatformDetector struct {
	DetectFn func(page cartex.Page) cartex.Platform
}

func (d *PlatformDetector) Detect(page cartex.Page) cartex.Platform {
	return d.DetectFn(page)
}
