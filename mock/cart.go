package mock

import (
	"context"

	"github.com/fwojciec/cartex"
)

var _ cartex.CartService = (*CartService)(nil)

// CartService is a mock implementation of cartex.CartService.
type CartService struct {
	AddItemFn    func(ctx context.Context, item *cartex.CartItem) error
	FindItemsFn  func(ctx context.Context, filter cartex.CartFilter) ([]*cartex.CartItem, error)
	DeleteItemFn func(ctx context.Context, id string) error
	ClearItemsFn func(ctx context.Context) error
}

func (s *CartService) AddItem(ctx context.Context, item *cartex.CartItem) error {
	return s.AddItemFn(ctx, item)
}

func (s *CartService) FindItems(ctx context.Context, filter cartex.CartFilter) ([]*cartex.CartItem, error) {
	return s.FindItemsFn(ctx, filter)
}

func (s *CartService) DeleteItem(ctx context.Context, id string) error {
	return s.DeleteItemFn(ctx, id)
}

func (s *CartService) ClearItems(ctx context.Context) error {
	return s.ClearItemsFn(ctx)
}
