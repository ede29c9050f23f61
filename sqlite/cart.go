package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cartex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ cartex.CartService = (*CartService)(nil)

// CartService implements cartex.CartService using SQLite.
type CartService struct {
	db *DB
}

// NewCartService creates a new CartService.
func NewCartService(db *DB) *CartService {
	return &CartService{db: db}
}

// hashItem fingerprints the captured fields so re-adding an unchanged
// product skips the write.
func hashItem(item *cartex.CartItem) string {
	h := xxhash.New()
	for _, field := range []string{item.Title, item.Price.String(), item.Image} {
		_, _ = h.WriteString(field)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// AddItem saves an item, replacing any item with the same URL.
// The replaced item's ID and added time are kept.
func (s *CartService) AddItem(ctx context.Context, item *cartex.CartItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	hash := hashItem(item)
	now := time.Now().UTC()

	var id, addedAt, existingHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, added_at, item_hash
		FROM cart_items
		WHERE url = ?
	`, item.URL).Scan(&id, &addedAt, &existingHash)

	if err == sql.ErrNoRows {
		item.ID = uuid.New().String()
		item.AddedAt = now
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO cart_items (id, url, title, price, image, item_hash, added_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, item.URL, item.Title, item.Price.String(), item.Image, hash,
			now.Format(time.RFC3339), now.Format(time.RFC3339))
		return err
	}
	if err != nil {
		return err
	}

	item.ID = id
	if item.AddedAt, err = parseRFC3339(addedAt, "added_at"); err != nil {
		return err
	}
	if hash == existingHash {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE cart_items
		SET title = ?, price = ?, image = ?, item_hash = ?, updated_at = ?
		WHERE id = ?
	`, item.Title, item.Price.String(), item.Image, hash, now.Format(time.RFC3339), id)
	return err
}

// FindItems retrieves items matching the filter, oldest first.
func (s *CartService) FindItems(ctx context.Context, filter cartex.CartFilter) ([]*cartex.CartItem, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, title, price, image, added_at FROM cart_items WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY added_at ASC, rowid ASC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*cartex.CartItem
	for rows.Next() {
		var item cartex.CartItem
		var price, addedAt string

		if err := rows.Scan(&item.ID, &item.URL, &item.Title, &price, &item.Image, &addedAt); err != nil {
			return nil, err
		}

		item.Price = cartex.ParsePrice(price)
		if item.AddedAt, err = parseRFC3339(addedAt, "added_at"); err != nil {
			return nil, err
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}

// DeleteItem removes one item.
func (s *CartService) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return cartex.Errorf(cartex.ENOTFOUND, "cart item not found")
	}

	return nil
}

// ClearItems removes every item.
func (s *CartService) ClearItems(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items")
	return err
}
