package cartex

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a captured product saved to the cart.
type CartItem struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Price   Price     `json:"price"`
	Image   string    `json:"image"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"addedAt"`
}

// NewCartItem builds a cart item from an extraction result.
func NewCartItem(r *Result) *CartItem {
	return &CartItem{
		Title: r.Title,
		Price: r.Price,
		Image: r.Image,
		URL:   r.URL,
	}
}

// Validate returns an error if the item contains invalid fields.
func (i *CartItem) Validate() error {
	if i.URL == "" {
		return Errorf(EINVALID, "cart item URL required")
	}
	if i.Title == "" {
		return Errorf(EINVALID, "cart item title required")
	}
	return nil
}

// CartService represents a service for managing the cart.
type CartService interface {
	// AddItem saves an item. An item with the same URL is replaced,
	// keeping its ID.
	AddItem(ctx context.Context, item *CartItem) error

	// FindItems retrieves items matching the filter, oldest first.
	FindItems(ctx context.Context, filter CartFilter) ([]*CartItem, error)

	// DeleteItem removes one item.
	// Returns ENOTFOUND if the item does not exist.
	DeleteItem(ctx context.Context, id string) error

	// ClearItems removes every item.
	ClearItems(ctx context.Context) error
}

// CartFilter represents a filter for FindItems.
type CartFilter struct {
	URL *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Subtotals sums item prices per currency, sorted by currency.
// Unavailable prices count as zero.
func Subtotals(items []*CartItem) []NormalizedPrice {
	sums := make(map[string]decimal.Decimal)
	for _, item := range items {
		p, ok := item.Price.Value()
		if !ok {
			continue
		}
		sums[p.Currency] = sums[p.Currency].Add(p.Amount)
	}
	out := make([]NormalizedPrice, 0, len(sums))
	for currency, amount := range sums {
		out = append(out, NormalizedPrice{Currency: currency, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
