package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cartex"
)

// Ensure decorators implement their interfaces.
var (
	_ cartex.Extractor = (*LoggingExtractor)(nil)
	_ cartex.Capturer  = (*LoggingCapturer)(nil)
)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   cartex.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next cartex.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result.
func (e *LoggingExtractor) Extract(ctx context.Context, page cartex.Page) (result *cartex.Result, err error) {
	defer func(begin time.Time) {
		attrs := []any{"duration", time.Since(begin)}
		if result != nil {
			attrs = append(attrs,
				"url", result.URL,
				"title", result.Title,
				"price", result.Price.String(),
			)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, page)
}

// LoggingCapturer wraps a Capturer with logging.
type LoggingCapturer struct {
	next   cartex.Capturer
	logger *slog.Logger
}

// NewLoggingCapturer creates a new LoggingCapturer.
func NewLoggingCapturer(next cartex.Capturer, logger *slog.Logger) *LoggingCapturer {
	return &LoggingCapturer{next: next, logger: logger}
}

// Capture delegates to the wrapped capturer and logs the outcome.
func (c *LoggingCapturer) Capture(ctx context.Context, rawURL string) (result *cartex.Result, err error) {
	defer func(begin time.Time) {
		c.logger.Info("capture",
			"url", rawURL,
			"code", cartex.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Capture(ctx, rawURL)
}
