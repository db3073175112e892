package auth

import (
	"errors"
	"fmt"
)

// Kind classifies why the gate rejected a request
type Kind string

const (
	KindMissingToken          Kind = "missing_token"
	KindInvalidToken          Kind = "invalid_token"
	KindTokenExpired          Kind = "token_expired"
	KindDirectoryLookupFailed Kind = "directory_lookup_failed"
	KindUserNotFound          Kind = "user_not_found"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrMissingToken          = &Error{Kind: KindMissingToken}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrTokenExpired          = &Error{Kind: KindTokenExpired}
	ErrDirectoryLookupFailed = &Error{Kind: KindDirectoryLookupFailed}
	ErrUserNotFound          = &Error{Kind: KindUserNotFound}
)

// Error is a gate rejection. Code carries the provider's error code when there is one.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

// NewError builds an Error of the given kind wrapping err
func NewError(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the provider code carried by the rejection
func (e *Error) ErrorCode() string {
	return e.Code
}

// Is matches another *Error with the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or "" when err is not a gate error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
