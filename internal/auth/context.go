package auth

import (
	"context"
)

// ContextKey is a type-safe key for context values
type ContextKey string

// IdentityContextKey is the key used to store the identity in the context
const IdentityContextKey ContextKey = "auth:identity"

// IdentityFromContext extracts the identity from the request context
func IdentityFromContext(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityContextKey).(*Identity); ok {
		return identity
	}
	return nil
}

// ContextWithIdentity adds an identity to a context
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}
