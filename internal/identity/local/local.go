// Package local is a self-contained identity provider: bcrypt password hashes
// stored next to the documents and HS256 tokens signed with a shared secret.
// It serves development setups and tests; production deployments use the
// hosted provider in package firebase.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"whatsnext/internal/auth"
	"whatsnext/internal/identity"
	"whatsnext/internal/store"
	"whatsnext/internal/validate"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 32

// Accounts persists local credentials
type Accounts interface {
	CreateAccount(ctx context.Context, a store.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*store.Account, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// Config holds local provider configuration
type Config struct {
	// Secret signs and verifies tokens; at least 32 bytes
	Secret string

	// Issuer is written to and required in the iss and aud claims
	Issuer string

	// TTL is the token lifetime
	TTL time.Duration

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Provider implements identity.Provider
type Provider struct {
	accounts Accounts
	secret   []byte
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

// New creates a local provider
func New(cfg Config, accounts Accounts) (*Provider, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("local token secret must be at least %d bytes long", minSecretLength)
	}
	if cfg.Issuer == "" {
		return nil, errors.New("local token issuer is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("local token ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{
		accounts: accounts,
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		ttl:      cfg.TTL,
		now:      now,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "local"
}

// SignUp creates an account
func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	email = strings.TrimSpace(email)
	if !validate.IsEmail(email) {
		return nil, identity.NewError(identity.CodeInvalidEmail, "malformed email address", nil)
	}
	if len(password) < 6 {
		return nil, identity.NewError(identity.CodeWeakPassword, "password should be at least 6 characters", nil)
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, identity.NewError(identity.CodeInternalError, "hash password", err)
	}

	account := store.Account{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    store.Timestamp(p.now()),
	}
	if err := p.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, identity.NewError(identity.CodeEmailAlreadyInUse, "the email address is already in use", err)
		}
		return nil, identity.NewError(identity.CodeInternalError, "create account", err)
	}

	return p.session(account)
}

// SignIn checks credentials
func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	email = strings.TrimSpace(email)
	if !validate.IsEmail(email) {
		return nil, identity.NewError(identity.CodeInvalidEmail, "malformed email address", nil)
	}

	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, identity.NewError(identity.CodeUserNotFound, "no account for this email", err)
	}
	if err != nil {
		return nil, identity.NewError(identity.CodeInternalError, "load account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), prehash(password)); err != nil {
		return nil, identity.NewError(identity.CodeWrongPassword, "password is invalid", err)
	}

	return p.session(*account)
}

// DeleteAccount removes the account behind a session
func (p *Provider) DeleteAccount(ctx context.Context, session *identity.Session) error {
	err := p.accounts.DeleteAccount(ctx, session.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return identity.NewError(identity.CodeInternalError, "delete account", err)
	}
	return nil
}

// prehash digests the password so bcrypt's 72 byte input limit never applies
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (p *Provider) session(a store.Account) (*identity.Session, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"iss":     p.issuer,
		"aud":     p.issuer,
		"sub":     a.UserID,
		"user_id": a.UserID,
		"email":   a.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(p.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, identity.NewError(identity.CodeInternalError, "sign token", err)
	}
	return &identity.Session{UserID: a.UserID, IDToken: signed}, nil
}

// Verify implements auth.TokenVerifier
func (p *Provider) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, auth.NewError(auth.KindTokenExpired, identity.CodeTokenExpired, err)
		}
		return nil, identity.NewError(identity.CodeArgumentError, "token verification failed", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, identity.NewError(identity.CodeArgumentError, "unexpected claims type", nil)
	}
	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, identity.NewError(identity.CodeArgumentError, "token has no subject", err)
	}

	return &auth.Claims{Subject: subject, Values: map[string]any(mapClaims)}, nil
}
