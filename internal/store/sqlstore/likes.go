package sqlstore

import (
	"context"
	"fmt"

	"whatsnext/internal/store"
)

// ListLikesByHandle returns the likes made by a user
func (s *Store) ListLikesByHandle(ctx context.Context, handle string) ([]store.Like, error) {
	rows, err := s.query(ctx,
		"SELECT like_id, user_handle, item_id, created_at FROM likes WHERE user_handle = ? ORDER BY created_at",
		handle,
	)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	likes := []store.Like{}
	for rows.Next() {
		var l store.Like
		if err := rows.Scan(&l.LikeID, &l.UserHandle, &l.ItemID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// addLike records a like. Likes are written by the client app directly.
func (s *Store) addLike(ctx context.Context, l store.Like) error {
	_, err := s.exec(ctx,
		"INSERT INTO likes (like_id, user_handle, item_id, created_at) VALUES (?, ?, ?, ?)",
		l.LikeID, l.UserHandle, l.ItemID, l.CreatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}
