// Package store defines the records the API persists and the errors its
// storage backends report.
package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key is taken
	ErrAlreadyExists = errors.New("already exists")
)

// TimeLayout is the ISO-8601 layout with millisecond precision used for every createdAt
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in TimeLayout (UTC)
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// User is a profile document keyed by handle
type User struct {
	Handle    string `json:"handle"`
	Email     string `json:"email"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	Bio       string `json:"bio,omitempty"`
	Website   string `json:"website,omitempty"`
	Location  string `json:"location,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Item is a note owned by a user
type Item struct {
	ItemID    string `json:"itemId"`
	UserID    string `json:"userId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// Like records a user liking an item
type Like struct {
	LikeID     string `json:"likeId"`
	UserHandle string `json:"userHandle"`
	ItemID     string `json:"itemId"`
	CreatedAt  string `json:"createdAt"`
}

// Account holds local credentials for the built-in identity provider
type Account struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    string
}
