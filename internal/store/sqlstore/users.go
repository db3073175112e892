package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"whatsnext/internal/auth"
	"whatsnext/internal/store"
	"whatsnext/internal/validate"
)

const userColumns = "handle, email, user_id, created_at, bio, website, location, image_url"

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var u store.User
	if err := row.Scan(&u.Handle, &u.Email, &u.UserID, &u.CreatedAt, &u.Bio, &u.Website, &u.Location, &u.ImageURL); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the user document for handle
func (s *Store) GetUser(ctx context.Context, handle string) (*store.User, error) {
	u, err := scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE handle = ?", handle))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", handle, err)
	}
	return u, nil
}

// CreateUser stores a new user document. A taken handle yields store.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, u store.User) error {
	_, err := s.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.Handle, u.Email, u.UserID, u.CreatedAt, u.Bio, u.Website, u.Location, u.ImageURL,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user %q: %w", u.Handle, err)
	}
	return nil
}

// FindByUserID implements auth.Directory
func (s *Store) FindByUserID(ctx context.Context, id string, limit int) ([]auth.DirectoryRecord, error) {
	rows, err := s.query(ctx, "SELECT handle, user_id FROM users WHERE user_id = ? ORDER BY handle LIMIT ?", id, limit)
	if err != nil {
		return nil, fmt.Errorf("find users by id: %w", err)
	}
	defer rows.Close()

	var records []auth.DirectoryRecord
	for rows.Next() {
		var r auth.DirectoryRecord
		if err := rows.Scan(&r.Handle, &r.UserID); err != nil {
			return nil, fmt.Errorf("scan user record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// UpdateUserDetails sets the non-empty fields of d on the user document
func (s *Store) UpdateUserDetails(ctx context.Context, handle string, d validate.UserDetails) error {
	var sets []string
	var args []any
	for _, f := range []struct {
		column, value string
	}{
		{"bio", d.Bio},
		{"website", d.Website},
		{"location", d.Location},
	} {
		if f.value == "" {
			continue
		}
		sets = append(sets, f.column+" = ?")
		args = append(args, f.value)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, handle)

	res, err := s.exec(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE handle = ?", args...)
	if err != nil {
		return fmt.Errorf("update user %q: %w", handle, err)
	}
	return requireAffected(res)
}

// SetUserImage stores the public image URL on the user document
func (s *Store) SetUserImage(ctx context.Context, handle, imageURL string) error {
	res, err := s.exec(ctx, "UPDATE users SET image_url = ? WHERE handle = ?", imageURL, handle)
	if err != nil {
		return fmt.Errorf("set image for %q: %w", handle, err)
	}
	return requireAffected(res)
}
