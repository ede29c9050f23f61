package goquery

import (
	"net/url"
	"slices"

	"github.com/fwojciec/cartex"
)

var _ cartex.StrategyRegistry = (*Registry)(nil)

// Registry holds strategies in registration order and the site profiles
// that reorder or disable them. Registration order is the trust ranking
// used by the voter as a tie-break.
type Registry struct {
	strategies []cartex.Strategy
	profiles   []*cartex.SiteProfile
}

// NewRegistry creates a new Registry with the given profiles. Profiles are
// matched in order, so more specific ones should come first.
func NewRegistry(profiles ...*cartex.SiteProfile) *Registry {
	return &Registry{profiles: profiles}
}

// Register appends a strategy.
// If a strategy with the same name is already registered, it is replaced in place.
func (r *Registry) Register(s cartex.Strategy) {
	if i := r.index(s.Name()); i >= 0 {
		r.strategies[i] = s
		return
	}
	r.strategies = append(r.strategies, s)
}

// RegisterBefore inserts s ahead of the strategy named before.
// Falls back to Register if before is not registered.
func (r *Registry) RegisterBefore(before string, s cartex.Strategy) {
	i := r.index(before)
	if i < 0 || r.index(s.Name()) >= 0 {
		r.Register(s)
		return
	}
	r.strategies = slices.Insert(r.strategies, i, s)
}

// AddProfile appends a site profile.
func (r *Registry) AddProfile(p *cartex.SiteProfile) {
	r.profiles = append(r.profiles, p)
}

// StrategiesFor returns the strategies of kind for profile.
// Disabled strategies are removed and preferred ones moved to the front in
// the order the profile lists them.
func (r *Registry) StrategiesFor(kind cartex.Kind, profile *cartex.SiteProfile) []cartex.Strategy {
	var preferred, rest []cartex.Strategy
	for _, s := range r.strategies {
		if s.Kind() != kind || profile.Disables(s.Name()) {
			continue
		}
		rest = append(rest, s)
	}
	if profile == nil {
		return rest
	}
	for _, name := range profile.Prefer {
		i := slices.IndexFunc(rest, func(s cartex.Strategy) bool { return s.Name() == name })
		if i < 0 {
			continue
		}
		preferred = append(preferred, rest[i])
		rest = slices.Delete(rest, i, i+1)
	}
	return append(preferred, rest...)
}

// ProfileFor returns the first profile matching the URL host.
// Returns nil if no profile matches.
func (r *Registry) ProfileFor(u *url.URL) *cartex.SiteProfile {
	if u == nil {
		return nil
	}
	for _, p := range r.profiles {
		if p.Matches(u.Host) {
			return p
		}
	}
	return nil
}

// List returns the names of all registered strategies of kind.
func (r *Registry) List(kind cartex.Kind) []string {
	var names []string
	for _, s := range r.strategies {
		if s.Kind() == kind {
			names = append(names, s.Name())
		}
	}
	return names
}

func (r *Registry) index(name string) int {
	return slices.IndexFunc(r.strategies, func(s cartex.Strategy) bool { return s.Name() == name })
}
