package slog

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/cartex"
)

// Ensure decorators implement their interfaces.
var (
	_ cartex.StrategyRegistry = (*LoggingRegistry)(nil)
	_ cartex.PlatformDetector = (*LoggingDetector)(nil)
)

// LoggingRegistry wraps a StrategyRegistry with logging of the site
// profile chosen for each page.
type LoggingRegistry struct {
	next   cartex.StrategyRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next cartex.StrategyRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Register delegates to the wrapped registry.
func (r *LoggingRegistry) Register(s cartex.Strategy) {
	r.next.Register(s)
}

// StrategiesFor delegates to the wrapped registry and logs the chain size.
func (r *LoggingRegistry) StrategiesFor(kind cartex.Kind, profile *cartex.SiteProfile) []cartex.Strategy {
	strategies := r.next.StrategiesFor(kind, profile)
	r.logger.Debug("strategy chain",
		"kind", kind,
		"profile", profileName(profile),
		"count", len(strategies),
	)
	return strategies
}

// ProfileFor delegates to the wrapped registry and logs the match.
func (r *LoggingRegistry) ProfileFor(u *url.URL) *cartex.SiteProfile {
	profile := r.next.ProfileFor(u)
	host := ""
	if u != nil {
		host = u.Host
	}
	r.logger.Info("site profile",
		"host", host,
		"profile", profileName(profile),
	)
	return profile
}

func profileName(p *cartex.SiteProfile) string {
	if p == nil {
		return "(none)"
	}
	return p.Name
}

// LoggingDetector wraps a PlatformDetector with debug logging.
type LoggingDetector struct {
	next   cartex.PlatformDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next cartex.PlatformDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the platform found.
func (d *LoggingDetector) Detect(page cartex.Page) cartex.Platform {
	begin := time.Now()
	platform := d.next.Detect(page)
	name := string(platform)
	if platform == cartex.PlatformUnknown {
		name = "(unknown)"
	}
	d.logger.Debug("platform detection",
		"platform", name,
		"duration", time.Since(begin),
	)
	return platform
}
