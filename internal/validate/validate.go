// Package validate checks untrusted signup, login and profile request fields.
//
// All functions are pure: they never call out, never mutate their input and
// return the same result for the same input.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minPasswordLength = 6

// Field error messages.
const (
	MsgEmptyEmail     = "Must not be empty."
	MsgInvalidEmail   = "Must be a valid email address"
	MsgEmpty          = "Must not be empty"
	MsgShortPassword  = "Must be at least 6 characters long"
	MsgPasswordsMatch = "Passwords must match"
)

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// Result is the outcome of validating a form. Errors maps field name to message
// and is empty exactly when Valid is true.
type Result struct {
	Valid  bool
	Errors map[string]string
}

func newResult(errs map[string]string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// SignupInput holds the raw signup fields.
type SignupInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Handle          string `json:"handle"`
}

// LoginInput holds the raw login fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDetailsInput holds the raw profile update fields.
type UserDetailsInput struct {
	Bio      string `json:"bio"`
	Website  string `json:"website"`
	Location string `json:"location"`
}

// UserDetails is the sanitized subset of a profile update. Empty fields are omitted.
type UserDetails struct {
	Bio      string `json:"bio,omitempty"`
	Website  string `json:"website,omitempty"`
	Location string `json:"location,omitempty"`
}

// IsEmpty reports whether nothing survived reduction.
func (d UserDetails) IsEmpty() bool {
	return d == UserDetails{}
}

func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsEmail reports whether s has the shape of an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Signup validates a signup form.
func Signup(in SignupInput) Result {
	errs := map[string]string{}

	if isEmpty(in.Email) {
		errs["email"] = MsgEmptyEmail
	} else if !IsEmail(in.Email) {
		errs["email"] = MsgInvalidEmail
	}

	if isEmpty(in.Password) {
		errs["password"] = MsgEmpty
	} else if utf8.RuneCountInString(in.Password) < minPasswordLength {
		errs["password"] = MsgShortPassword
	}

	if isEmpty(in.Handle) {
		errs["handle"] = MsgEmpty
	}

	if in.Password != in.ConfirmPassword {
		errs["confirmPassword"] = MsgPasswordsMatch
	}

	return newResult(errs)
}

// Login validates a login form. Unlike Signup it does not check the email shape.
func Login(in LoginInput) Result {
	errs := map[string]string{}

	if isEmpty(in.Email) {
		errs["email"] = MsgEmptyEmail
	}
	if isEmpty(in.Password) {
		errs["password"] = MsgEmpty
	}

	return newResult(errs)
}

// ReduceUserDetails keeps the non-blank profile fields of in.
//
// Values are stored as given, except a website without an http prefix, which is
// trimmed and prefixed with "http://". Location is only considered alongside a
// website, and a blank website yields an empty result even when bio is set.
func ReduceUserDetails(in UserDetailsInput) UserDetails {
	var out UserDetails

	if isEmpty(in.Website) {
		return out
	}

	if !isEmpty(in.Bio) {
		out.Bio = in.Bio
	}

	website := strings.TrimSpace(in.Website)
	if strings.HasPrefix(website, "http") {
		out.Website = in.Website
	} else {
		out.Website = "http://" + website
	}

	if !isEmpty(in.Location) {
		out.Location = in.Location
	}

	return out
}
