// internal/authz/types.go

// Package authz decides whether an authenticated identity may act on a resource.
package authz

import (
	"whatsnext/internal/auth"
)

// Decision represents an authorization decision
type Decision int

const (
	// Allow indicates the request is allowed
	Allow Decision = iota
	// Deny indicates the request is denied
	Deny
	// Unauthorized indicates the request is unauthorized (no identity)
	Unauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unauthorized"
	}
}

// Request represents an authorization request
type Request struct {
	// Identity is the identity to authorize
	Identity *auth.Identity

	// Action is what the identity wants to do, e.g. "delete"
	Action string

	// Resource names the resource being accessed, for logs
	Resource string

	// OwnerID is the user ID that owns the resource
	OwnerID string
}

// Response represents an authorization response
type Response struct {
	// Decision is the authorization decision
	Decision Decision

	// Reason provides additional information about the decision
	Reason string
}

// Allowed reports whether the decision is Allow
func (r *Response) Allowed() bool {
	return r.Decision == Allow
}

// Authorizer defines the interface for authorization
type Authorizer interface {
	// Authorize checks if the identity may perform the action on the resource
	Authorize(req *Request) *Response
}
