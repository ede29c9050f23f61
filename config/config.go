// Package config loads cartex settings from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/extract"
	"github.com/fwojciec/cartex/imageurl"
	"github.com/fwojciec/cartex/price"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Defaults for settings absent from the file.
const (
	DefaultCaptureTimeout = 5 * time.Second
	DefaultRateLimit      = 1.0
	DefaultImageRules     = "default"
)

// Config is the top-level cartex configuration.
type Config struct {
	StrategyTimeout time.Duration   `yaml:"strategy_timeout"`
	CaptureTimeout  time.Duration   `yaml:"capture_timeout"`
	PriceCeiling    decimal.Decimal `yaml:"price_ceiling"`
	DefaultCurrency string          `yaml:"default_currency"`
	TitleMaxLength  int             `yaml:"title_max_length"`
	FallbackImage   string          `yaml:"fallback_image"`
	ImageRules      string          `yaml:"image_rules"` // default | alternate
	RateLimit       float64         `yaml:"rate_limit"`  // requests per second per site

	// HighPriceHosts are hosts where five-figure prices are routine.
	HighPriceHosts []string `yaml:"high_price_hosts"`

	// Profiles are checked before the built-in profiles.
	Profiles []*cartex.SiteProfile `yaml:"profiles"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cartex.Errorf(cartex.EINVALID, "parse config: %v", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.StrategyTimeout <= 0 {
		c.StrategyTimeout = extract.DefaultStrategyTimeout
	}
	if c.CaptureTimeout <= 0 {
		c.CaptureTimeout = DefaultCaptureTimeout
	}
	if !c.PriceCeiling.IsPositive() {
		c.PriceCeiling = cartex.DefaultPriceCeiling
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = price.DefaultCurrency
	}
	if c.TitleMaxLength <= 0 {
		c.TitleMaxLength = cartex.DefaultTitleMaxLength
	}
	c.TitleMaxLength = min(max(c.TitleMaxLength, cartex.DefaultTitleMaxLength), cartex.MaxTitleMaxLength)
	if c.FallbackImage == "" {
		c.FallbackImage = extract.DefaultFallbackImage
	}
	if c.ImageRules == "" {
		c.ImageRules = DefaultImageRules
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if _, err := imageurl.RulesByName(c.ImageRules); err != nil {
		return err
	}
	for _, p := range c.Profiles {
		if p == nil {
			return cartex.Errorf(cartex.EINVALID, "empty profile")
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SiteProfiles returns the configured profiles followed by the built-in
// ones. Profiles covering a high-price host are marked tolerant, and
// high-price hosts no profile covers get a profile of their own.
func (c *Config) SiteProfiles() []*cartex.SiteProfile {
	profiles := make([]*cartex.SiteProfile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		clone := *p
		profiles = append(profiles, &clone)
	}
	profiles = append(profiles, cartex.DefaultProfiles()...)

	var uncovered []string
	for _, host := range c.HighPriceHosts {
		covered := false
		for _, p := range profiles {
			if p.Matches(host) {
				p.HighPriceTolerant = true
				covered = true
			}
		}
		if !covered {
			uncovered = append(uncovered, host)
		}
	}
	if len(uncovered) > 0 {
		profiles = append(profiles, &cartex.SiteProfile{
			Name:              "high-price",
			Hosts:             uncovered,
			HighPriceTolerant: true,
		})
	}
	return profiles
}

// EngineOptions returns the extraction engine options the configuration
// describes.
func (c *Config) EngineOptions() ([]extract.Option, error) {
	rules, err := imageurl.RulesByName(c.ImageRules)
	if err != nil {
		return nil, err
	}

	normalizer := price.NewNormalizer()
	normalizer.DefaultCurrency = c.DefaultCurrency

	voter := price.NewVoter()
	voter.Ceiling = c.PriceCeiling

	return []extract.Option{
		extract.WithTimeout(c.StrategyTimeout),
		extract.WithNormalizer(normalizer),
		extract.WithVoter(voter),
		extract.WithValidator(imageurl.NewValidator(rules)),
		extract.WithFallbackImage(c.FallbackImage),
		extract.WithTitleMaxLength(c.TitleMaxLength),
	}, nil
}

// String renders the effective configuration as YAML.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}
