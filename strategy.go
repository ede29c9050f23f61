package cartex

import (
	"context"
	"net/url"
	"time"
)

// Strategy proposes a value for one product attribute from a Page.
// A Strategy must not mutate the page. Returning the zero Raw with a nil
// error means the strategy found nothing.
type Strategy interface {
	// Name identifies the strategy in candidates, profiles and logs.
	Name() string

	// Kind reports which attribute the strategy extracts.
	Kind() Kind

	// Fallback reports whether the strategy belongs to the low-trust tier
	// that only runs when no primary strategy produced a value.
	Fallback() bool

	// Extract reads the page and returns the raw value found.
	Extract(ctx context.Context, page Page) (Raw, error)
}

// ExtractFunc is the signature of a strategy body.
type ExtractFunc func(ctx context.Context, page Page) (Raw, error)

type funcStrategy struct {
	name     string
	kind     Kind
	fallback bool
	fn       ExtractFunc
}

// NewStrategy returns a primary-tier Strategy backed by fn.
func NewStrategy(name string, kind Kind, fn ExtractFunc) Strategy {
	return &funcStrategy{name: name, kind: kind, fn: fn}
}

// NewFallbackStrategy returns a fallback-tier Strategy backed by fn.
func NewFallbackStrategy(name string, kind Kind, fn ExtractFunc) Strategy {
	return &funcStrategy{name: name, kind: kind, fallback: true, fn: fn}
}

func (s *funcStrategy) Name() string   { return s.name }
func (s *funcStrategy) Kind() Kind     { return s.kind }
func (s *funcStrategy) Fallback() bool { return s.fallback }

func (s *funcStrategy) Extract(ctx context.Context, page Page) (Raw, error) {
	return s.fn(ctx, page)
}

// StrategyRegistry holds the ordered strategy list for each attribute and
// the site profiles that adjust it.
type StrategyRegistry interface {
	// Register appends a strategy. Registration order is trust order.
	Register(s Strategy)

	// StrategiesFor returns the strategies for kind in trust order, with the
	// profile's disabled strategies removed and preferred ones moved first.
	// A nil profile returns the registration order unchanged.
	StrategiesFor(kind Kind, profile *SiteProfile) []Strategy

	// ProfileFor returns the profile matching u, or nil.
	ProfileFor(u *url.URL) *SiteProfile
}

// Outcome classifies a single strategy run.
type Outcome string

// Strategy outcomes.
const (
	OutcomeHit     Outcome = "hit"
	OutcomeMiss    Outcome = "miss"
	OutcomeFailed  Outcome = "failed"
	OutcomeTimeout Outcome = "timeout"
)

// StrategyObserver receives one notification per strategy run.
type StrategyObserver interface {
	ObserveStrategy(name string, kind Kind, outcome Outcome, d time.Duration)
}
