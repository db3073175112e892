package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"whatsnext/internal/store"
)

// CreateAccount stores local credentials. A taken email yields store.ErrAlreadyExists.
func (s *Store) CreateAccount(ctx context.Context, a store.Account) error {
	_, err := s.exec(ctx,
		"INSERT INTO accounts (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		a.UserID, strings.ToLower(a.Email), a.PasswordHash, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccountByEmail looks up local credentials by email, case-insensitively
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	var a store.Account
	err := s.queryRow(ctx,
		"SELECT user_id, email, password_hash, created_at FROM accounts WHERE email = ?",
		strings.ToLower(email),
	).Scan(&a.UserID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// DeleteAccount removes local credentials by user id
func (s *Store) DeleteAccount(ctx context.Context, userID string) error {
	res, err := s.exec(ctx, "DELETE FROM accounts WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireAffected(res)
}
