// Package identity defines the identity provider contract: account creation,
// password sign-in and token verification.
package identity

import (
	"context"
	"errors"

	"whatsnext/internal/auth"
)

// Error codes reported by providers. The vocabulary follows the hosted
// identity provider so handlers map them the same way for every backend.
const (
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWrongPassword     = "auth/wrong-password"
	CodeUserNotFound      = "auth/user-not-found"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeWeakPassword      = "auth/weak-password"
	CodeTokenExpired      = "auth/id-token-expired"
	CodeArgumentError     = "auth/argument-error"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeInternalError     = "auth/internal-error"
)

// Error is a provider failure with a stable code
type Error struct {
	Code    string
	Message string
	Err     error
}

// NewError builds an Error
func NewError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode exposes the code to callers that only know the interface
func (e *Error) ErrorCode() string {
	return e.Code
}

// CodeOf returns the provider code of err, or CodeInternalError
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// Session is the result of a successful sign-up or sign-in
type Session struct {
	// UserID is the provider-issued subject identifier
	UserID string

	// IDToken is the bearer token the client presents on later requests
	IDToken string
}

// Provider creates accounts, signs users in and verifies their tokens
type Provider interface {
	auth.TokenVerifier

	// SignUp creates an account and returns a session for it
	SignUp(ctx context.Context, email, password string) (*Session, error)

	// SignIn checks credentials and returns a fresh session
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// DeleteAccount removes the account a session belongs to. Used to undo
	// a sign-up whose user record could not be saved.
	DeleteAccount(ctx context.Context, session *Session) error
}
