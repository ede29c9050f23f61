package extract

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/imageurl"
	"github.com/fwojciec/cartex/price"
)

// DefaultFallbackImage is a transparent 1x1 PNG shown when a page has no
// acceptable product image.
const DefaultFallbackImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// Ensure Engine implements cartex.Extractor at compile time.
var _ cartex.Extractor = (*Engine)(nil)

// Engine extracts title, price and image from a page using the strategies
// of a registry. It holds no per-page state and is safe for concurrent use.
type Engine struct {
	registry       cartex.StrategyRegistry
	scheduler      *Scheduler
	normalizer     *price.Normalizer
	voter          *price.Voter
	validator      *imageurl.Validator
	fallbackImage  string
	titleMaxLength int
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-strategy timeout.
// Defaults to DefaultStrategyTimeout (500ms) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.scheduler.Timeout = d
	}
}

// WithLogger sets the logger used for strategy failures and fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.scheduler.Logger = logger
	}
}

// WithObserver reports every strategy run to o.
func WithObserver(o cartex.StrategyObserver) Option {
	return func(e *Engine) {
		e.scheduler.Observer = o
	}
}

// WithNormalizer replaces the price normalizer.
func WithNormalizer(n *price.Normalizer) Option {
	return func(e *Engine) {
		e.normalizer = n
	}
}

// WithVoter replaces the price voter.
func WithVoter(v *price.Voter) Option {
	return func(e *Engine) {
		e.voter = v
	}
}

// WithValidator replaces the image validator.
func WithValidator(v *imageurl.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithFallbackImage sets the image reported when no candidate is accepted.
func WithFallbackImage(image string) Option {
	return func(e *Engine) {
		e.fallbackImage = image
	}
}

// WithTitleMaxLength sets the title length bound, clamped to
// [cartex.DefaultTitleMaxLength, cartex.MaxTitleMaxLength].
func WithTitleMaxLength(n int) Option {
	return func(e *Engine) {
		e.titleMaxLength = n
	}
}

// NewEngine creates an Engine backed by registry.
func NewEngine(registry cartex.StrategyRegistry, opts ...Option) *Engine {
	e := &Engine{
		registry:       registry,
		scheduler:      NewScheduler(),
		normalizer:     price.NewNormalizer(),
		voter:          price.NewVoter(),
		validator:      imageurl.NewValidator(imageurl.DefaultRules),
		fallbackImage:  DefaultFallbackImage,
		titleMaxLength: cartex.DefaultTitleMaxLength,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the title, price and image of page.
// The only error is EINVALID for a page without an absolute http(s) URL.
// Every other failure degrades to the fallback value of the attribute.
func (e *Engine) Extract(ctx context.Context, page cartex.Page) (result *cartex.Result, err error) {
	u := page.URL()
	if err := ValidateURL(u); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked", "url", u.String(), "panic", r)
			result, err = e.Fallback(u), nil
		}
	}()

	profile := e.registry.ProfileFor(u)
	return &cartex.Result{
		Title: e.title(ctx, page, profile),
		Price: e.price(ctx, page, profile),
		Image: e.image(ctx, page, profile),
		URL:   u.String(),
	}, nil
}

// Fallback returns the result reported for a page with no usable signals.
func (e *Engine) Fallback(u *url.URL) *cartex.Result {
	return &cartex.Result{
		Title: cartex.HostnameTitle(u, e.titleMaxLength),
		Price: cartex.Unavailable(),
		Image: e.fallbackImage,
		URL:   u.String(),
	}
}

func (e *Engine) title(ctx context.Context, page cartex.Page, profile *cartex.SiteProfile) string {
	strategies := e.registry.StrategiesFor(cartex.KindTitle, profile)
	title, _, ok := e.scheduler.RunFirst(ctx, strategies, page, func(raw cartex.Raw) (string, bool) {
		t := cartex.CleanTitle(raw.String(), e.titleMaxLength)
		return t, t != ""
	})
	if !ok {
		e.noCandidate(page, cartex.KindTitle)
		return cartex.HostnameTitle(page.URL(), e.titleMaxLength)
	}
	return title
}

func (e *Engine) price(ctx context.Context, page cartex.Page, profile *cartex.SiteProfile) cartex.Price {
	strategies := e.registry.StrategiesFor(cartex.KindPrice, profile)
	fallback := make(map[string]bool)
	for _, s := range strategies {
		if s.Fallback() {
			fallback[s.Name()] = true
		}
	}

	// Both tiers share one fan-out so the whole price step is bounded by a
	// single per-strategy timeout. Fallback candidates count only when no
	// primary candidate normalizes.
	var primary, rest []cartex.Candidate
	for _, c := range e.scheduler.RunAll(ctx, strategies, page) {
		if fallback[c.Source] {
			rest = append(rest, c)
		} else {
			primary = append(primary, c)
		}
	}

	hint := price.HintFor(profile)
	prices := e.normalize(primary, hint)
	if len(prices) == 0 {
		prices = e.normalize(rest, hint)
	}
	if len(prices) == 0 {
		e.noCandidate(page, cartex.KindPrice)
		return cartex.Unavailable()
	}

	ballot := e.voter.Tally(prices)
	if ballot.Rejected {
		e.logger.Debug("price rejected",
			"url", page.URL().String(),
			"code", cartex.ESANITY,
			"support", ballot.Support,
			"candidates", ballot.Candidates,
		)
	}
	return ballot.Price
}

func (e *Engine) normalize(candidates []cartex.Candidate, hint price.Hint) []cartex.NormalizedPrice {
	var prices []cartex.NormalizedPrice
	for _, c := range candidates {
		p, ok := e.normalizer.Normalize(c.Value, hint)
		if !ok {
			e.logger.Debug("price not parseable", "strategy", c.Source, "value", c.Value.String())
			continue
		}
		prices = append(prices, p)
	}
	return prices
}

func (e *Engine) image(ctx context.Context, page cartex.Page, profile *cartex.SiteProfile) string {
	base := page.URL()
	strategies := e.registry.StrategiesFor(cartex.KindImage, profile)
	image, _, ok := e.scheduler.RunFirst(ctx, strategies, page, func(raw cartex.Raw) (string, bool) {
		abs, err := imageurl.MakeAbsolute(raw.String(), base)
		if err != nil {
			return "", false
		}
		return abs, e.validator.Acceptable(abs)
	})
	if !ok {
		e.noCandidate(page, cartex.KindImage)
		return e.fallbackImage
	}
	return image
}

func (e *Engine) noCandidate(page cartex.Page, kind cartex.Kind) {
	e.logger.Debug("no candidate found",
		"url", page.URL().String(),
		"kind", kind,
		"code", cartex.ENOCANDIDATE,
	)
}

// ValidateURL returns EINVALID unless u is an absolute http(s) URL with a host.
func ValidateURL(u *url.URL) error {
	if u == nil || !u.IsAbs() || u.Host == "" {
		return cartex.Errorf(cartex.EINVALID, "URL must be absolute")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return cartex.Errorf(cartex.EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	return nil
}
