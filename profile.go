package cartex

import (
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SiteProfile adjusts strategy selection and normalization for a family of
// hosts. Profiles are plain data and can be loaded from configuration.
type SiteProfile struct {
	Name string `yaml:"name" json:"name"`

	// Hosts lists host patterns. "example.com" matches the host and its
	// subdomains. "amazon.*" matches the registrable name under any public
	// suffix, e.g. amazon.com and amazon.co.uk.
	Hosts []string `yaml:"hosts" json:"hosts"`

	// Disable names strategies that must not run for these hosts.
	Disable []string `yaml:"disable" json:"disable,omitempty"`

	// Prefer names strategies moved to the front of the order.
	Prefer []string `yaml:"prefer" json:"prefer,omitempty"`

	// HighPriceTolerant suppresses the high-amount misparse rule for
	// retailers where five-figure prices are routine.
	HighPriceTolerant bool `yaml:"high_price_tolerant" json:"highPriceTolerant,omitempty"`
}

// Validate returns an error if the profile contains invalid fields.
func (p *SiteProfile) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "profile name required")
	}
	if len(p.Hosts) == 0 {
		return Errorf(EINVALID, "profile %q requires at least one host", p.Name)
	}
	return nil
}

// Matches reports whether host belongs to the profile.
func (p *SiteProfile) Matches(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	for _, pattern := range p.Hosts {
		if matchHost(strings.ToLower(pattern), host) {
			return true
		}
	}
	return false
}

// Disables reports whether the named strategy is disabled.
func (p *SiteProfile) Disables(name string) bool {
	return p != nil && slices.Contains(p.Disable, name)
}

func matchHost(pattern, host string) bool {
	if label, ok := strings.CutSuffix(pattern, ".*"); ok {
		etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil {
			return false
		}
		name, _, _ := strings.Cut(etld1, ".")
		return name == label
	}
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

// DefaultProfiles returns the built-in retailer profiles.
func DefaultProfiles() []*SiteProfile {
	return []*SiteProfile{
		{
			Name:    "amazon",
			Hosts:   []string{"amazon.*"},
			Prefer:  []string{"amazon-title", "amazon-price", "amazon-image"},
			Disable: []string{"container-price", "text-largest-price"},
		},
		{
			Name:    "ebay",
			Hosts:   []string{"ebay.*"},
			Prefer:  []string{"ebay-title", "ebay-price"},
			Disable: []string{"attribute-price"},
		},
		{
			// JSON-LD on listing pages reports the cheapest variation.
			Name:    "etsy",
			Hosts:   []string{"etsy.com"},
			Prefer:  []string{"etsy-price"},
			Disable: []string{"jsonld-price"},
		},
		{
			Name:              "bestbuy",
			Hosts:             []string{"bestbuy.com", "bestbuy.ca"},
			Prefer:            []string{"bestbuy-price"},
			HighPriceTolerant: true,
		},
		{Name: "newegg", Hosts: []string{"newegg.com", "newegg.ca"}, HighPriceTolerant: true},
		{Name: "bhphotovideo", Hosts: []string{"bhphotovideo.com"}, HighPriceTolerant: true},
		{Name: "walmart", Hosts: []string{"walmart.com", "walmart.ca"}, Prefer: []string{"walmart-price"}},
		{Name: "target", Hosts: []string{"target.com"}, Prefer: []string{"target-price"}},
	}
}
