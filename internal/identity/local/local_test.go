package local

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"whatsnext/internal/auth"
	"whatsnext/internal/identity"
	"whatsnext/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]store.Account
}

func (m *memAccounts) CreateAccount(ctx context.Context, a store.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, ok := m.accounts[key]; ok {
		return store.ErrAlreadyExists
	}
	m.accounts[key] = a
	return nil
}

func (m *memAccounts) GetAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

const testSecret = "0123456789abcdef0123456789abcdef"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newProvider(t *testing.T, c *clock) *Provider {
	t.Helper()
	p, err := New(Config{Secret: testSecret, Issuer: "whatsnext-test", TTL: time.Hour, Now: c.now},
		&memAccounts{accounts: map[string]store.Account{}})
	require.NoError(t, err)
	return p
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Secret: "short", Issuer: "x", TTL: time.Hour}, nil)
	assert.Error(t, err)
	_, err = New(Config{Secret: testSecret, TTL: time.Hour}, nil)
	assert.Error(t, err)
	_, err = New(Config{Secret: testSecret, Issuer: "x"}, nil)
	assert.Error(t, err)
}

func TestSignUpSignInVerify(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	p := newProvider(t, c)

	session, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, session.UserID)

	claims, err := p.Verify(ctx, session.IDToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Values["email"])

	again, err := p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, again.UserID)

	_, err = p.SignUp(ctx, "ada@example.com", "another1")
	assert.Equal(t, identity.CodeEmailAlreadyInUse, identity.CodeOf(err))

	_, err = p.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.Equal(t, identity.CodeWrongPassword, identity.CodeOf(err))

	_, err = p.SignIn(ctx, "bob@example.com", "secret1")
	assert.Equal(t, identity.CodeUserNotFound, identity.CodeOf(err))

	_, err = p.SignIn(ctx, "not-an-email", "secret1")
	assert.Equal(t, identity.CodeInvalidEmail, identity.CodeOf(err))
}

func (m *memAccounts) DeleteAccount(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, a := range m.accounts {
		if a.UserID == userID {
			delete(m.accounts, key)
			return nil
		}
	}
	return store.ErrNotFound
}

func TestLongPasswords(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t, &clock{t: time.Now()})

	password := strings.Repeat("p", 100)
	session, err := p.SignUp(ctx, "ada@example.com", password)
	require.NoError(t, err)

	again, err := p.SignIn(ctx, "ada@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, again.UserID)

	// differs only past byte 72
	_, err = p.SignIn(ctx, "ada@example.com", strings.Repeat("p", 99)+"q")
	assert.Equal(t, identity.CodeWrongPassword, identity.CodeOf(err))
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t, &clock{t: time.Now()})

	session, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.DeleteAccount(ctx, session))

	_, err = p.SignIn(ctx, "ada@example.com", "secret1")
	assert.Equal(t, identity.CodeUserNotFound, identity.CodeOf(err))

	_, err = p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	assert.NoError(t, p.DeleteAccount(ctx, &identity.Session{UserID: "missing"}))
}

func TestVerifyExpiredToken(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	p := newProvider(t, c)

	session, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)
	_, err = p.Verify(ctx, session.IDToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	p := newProvider(t, c)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "whatsnext-test",
		"aud": "whatsnext-test",
		"sub": "uid",
		"exp": c.t.Add(time.Hour).Unix(),
	}).SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "someone-else",
		"aud": "whatsnext-test",
		"sub": "uid",
		"exp": c.t.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for _, tok := range []string{"garbage", forged, otherIssuer} {
		_, err := p.Verify(ctx, tok)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrTokenExpired)
		assert.Equal(t, identity.CodeArgumentError, identity.CodeOf(err))
	}
}
