package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"whatsnext/internal/store"
)

// ListItems returns the items owned by userID, newest first
func (s *Store) ListItems(ctx context.Context, userID string) ([]store.Item, error) {
	rows, err := s.query(ctx,
		"SELECT item_id, user_id, body, created_at FROM items WHERE user_id = ? ORDER BY created_at DESC, item_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []store.Item{}
	for rows.Next() {
		var it store.Item
		if err := rows.Scan(&it.ItemID, &it.UserID, &it.Body, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateItem stores a new item
func (s *Store) CreateItem(ctx context.Context, it store.Item) error {
	_, err := s.exec(ctx,
		"INSERT INTO items (item_id, user_id, body, created_at) VALUES (?, ?, ?, ?)",
		it.ItemID, it.UserID, it.Body, it.CreatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetItem returns one item
func (s *Store) GetItem(ctx context.Context, itemID string) (*store.Item, error) {
	var it store.Item
	err := s.queryRow(ctx, "SELECT item_id, user_id, body, created_at FROM items WHERE item_id = ?", itemID).
		Scan(&it.ItemID, &it.UserID, &it.Body, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item %q: %w", itemID, err)
	}
	return &it, nil
}

// UpdateItemBody replaces an item's body
func (s *Store) UpdateItemBody(ctx context.Context, itemID, body string) error {
	res, err := s.exec(ctx, "UPDATE items SET body = ? WHERE item_id = ?", body, itemID)
	if err != nil {
		return fmt.Errorf("update item %q: %w", itemID, err)
	}
	return requireAffected(res)
}

// DeleteItem removes an item
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	res, err := s.exec(ctx, "DELETE FROM items WHERE item_id = ?", itemID)
	if err != nil {
		return fmt.Errorf("delete item %q: %w", itemID, err)
	}
	return requireAffected(res)
}
