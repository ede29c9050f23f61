package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cartex"
)

// Ensure LoggingCartService implements cartex.CartService.
var _ cartex.CartService = (*LoggingCartService)(nil)

// LoggingCartService wraps a CartService with logging.
type LoggingCartService struct {
	next   cartex.CartService
	logger *slog.Logger
}

// NewLoggingCartService creates a new LoggingCartService.
func NewLoggingCartService(next cartex.CartService, logger *slog.Logger) *LoggingCartService {
	return &LoggingCartService{next: next, logger: logger}
}

func (s *LoggingCartService) AddItem(ctx context.Context, item *cartex.CartItem) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("cart add",
			"url", item.URL,
			"price", item.Price.String(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.AddItem(ctx, item)
}

func (s *LoggingCartService) FindItems(ctx context.Context, filter cartex.CartFilter) (items []*cartex.CartItem, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("cart find",
			"count", len(items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindItems(ctx, filter)
}

func (s *LoggingCartService) DeleteItem(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("cart delete",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteItem(ctx, id)
}

func (s *LoggingCartService) ClearItems(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("cart clear",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ClearItems(ctx)
}
