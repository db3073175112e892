package auth

import (
	"context"
)

// Claims is a verified token's decoded claim set
type Claims struct {
	// Subject is the provider-issued account identifier (the "sub" claim)
	Subject string

	// Values holds every claim of the token, including Subject under "sub"
	Values map[string]any
}

// Identity is the authenticated caller of a request. It is built per request
// from a verified token plus one directory lookup and never persisted.
type Identity struct {
	// SubjectID is the identifier issued by the identity provider
	SubjectID string

	// UserID is the userId stored on the directory record. It equals SubjectID.
	UserID string

	// Handle is the unique, human-chosen account name
	Handle string

	// Provider names the identity provider that verified the token
	Provider string

	// Claims are the decoded token claims, readable by downstream handlers
	Claims map[string]any
}

// DirectoryRecord is the subset of a user record the gate needs
type DirectoryRecord struct {
	Handle string
	UserID string
}

// TokenVerifier verifies bearer tokens against an identity provider.
// Implementations return an error matching ErrTokenExpired for expired tokens.
type TokenVerifier interface {
	// Name returns the provider name used in logs and metrics
	Name() string

	// Verify checks the token's signature and validity and returns its claims
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Directory resolves provider subjects to local user records
type Directory interface {
	// FindByUserID returns at most limit records whose userId equals id
	FindByUserID(ctx context.Context, id string, limit int) ([]DirectoryRecord, error)
}
