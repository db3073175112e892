package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsnext/internal/auth"
	"whatsnext/internal/observability/logging"
	"whatsnext/internal/observability/metrics"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	calls  int
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) Name() string { return "fake" }

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

// blockingVerifier waits for the caller to give up, like a key fetch that never answers
type blockingVerifier struct{ calls int }

func (b *blockingVerifier) Name() string { return "blocking" }

func (b *blockingVerifier) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	b.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeDirectory struct {
	calls   int
	lastID  string
	records []auth.DirectoryRecord
	err     error
}

func (f *fakeDirectory) FindByUserID(ctx context.Context, id string, limit int) ([]auth.DirectoryRecord, error) {
	f.calls++
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type codedErr struct{ code string }

func (e codedErr) Error() string     { return "provider: " + e.code }
func (e codedErr) ErrorCode() string { return e.code }

func validClaims() *auth.Claims {
	return &auth.Claims{
		Subject: "uid-1",
		Values:  map[string]any{"sub": "uid-1", "email": "a@b.com"},
	}
}

func newGate(v *fakeVerifier, d *fakeDirectory) *Gate {
	return New(v, d, logging.Discard(), metrics.NewCollector())
}

func TestAuthenticateRejectsMalformedHeadersWithoutCalls(t *testing.T) {
	headers := []string{"", "Bearer", "Bearer ", "Bearer    ", "bearer abc", "Basic abc", "Token abc", " Bearer abc"}
	for _, h := range headers {
		t.Run(fmt.Sprintf("%q", h), func(t *testing.T) {
			v := &fakeVerifier{claims: validClaims()}
			d := &fakeDirectory{records: []auth.DirectoryRecord{{Handle: "h", UserID: "uid-1"}}}

			identity, err := newGate(v, d).Authenticate(context.Background(), h)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, auth.ErrMissingToken)
			assert.Zero(t, v.calls)
			assert.Zero(t, d.calls)
		})
	}
}

func TestAuthenticateResolvesIdentity(t *testing.T) {
	v := &fakeVerifier{claims: validClaims()}
	d := &fakeDirectory{records: []auth.DirectoryRecord{{Handle: "ada", UserID: "uid-1"}}}

	identity, err := newGate(v, d).Authenticate(context.Background(), "Bearer tok")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.SubjectID)
	assert.Equal(t, "uid-1", identity.UserID)
	assert.Equal(t, "ada", identity.Handle)
	assert.Equal(t, "fake", identity.Provider)
	assert.Equal(t, "a@b.com", identity.Claims["email"])
	assert.Equal(t, "uid-1", d.lastID)
	assert.Equal(t, 1, v.calls)
	assert.Equal(t, 1, d.calls)
}

func TestAuthenticateFailures(t *testing.T) {
	tests := []struct {
		name     string
		verifier *fakeVerifier
		dir      *fakeDirectory
		want     error
		wantCode string
		dirCalls int
	}{
		{
			name:     "expired token",
			verifier: &fakeVerifier{err: fmt.Errorf("verify: %w", auth.ErrTokenExpired)},
			dir:      &fakeDirectory{},
			want:     auth.ErrTokenExpired,
			wantCode: "auth/id-token-expired",
		},
		{
			name:     "invalid token keeps provider code",
			verifier: &fakeVerifier{err: codedErr{code: "auth/argument-error"}},
			dir:      &fakeDirectory{},
			want:     auth.ErrInvalidToken,
			wantCode: "auth/argument-error",
		},
		{
			name:     "claims without subject",
			verifier: &fakeVerifier{claims: &auth.Claims{}},
			dir:      &fakeDirectory{},
			want:     auth.ErrInvalidToken,
		},
		{
			name:     "directory error",
			verifier: &fakeVerifier{claims: validClaims()},
			dir:      &fakeDirectory{err: errors.New("connection refused")},
			want:     auth.ErrDirectoryLookupFailed,
			dirCalls: 1,
		},
		{
			name:     "no directory record",
			verifier: &fakeVerifier{claims: validClaims()},
			dir:      &fakeDirectory{},
			want:     auth.ErrUserNotFound,
			dirCalls: 1,
		},
		{
			name:     "duplicate directory records",
			verifier: &fakeVerifier{claims: validClaims()},
			dir: &fakeDirectory{records: []auth.DirectoryRecord{
				{Handle: "a", UserID: "uid-1"},
				{Handle: "b", UserID: "uid-1"},
			}},
			want:     auth.ErrDirectoryLookupFailed,
			dirCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := newGate(tt.verifier, tt.dir).Authenticate(context.Background(), "Bearer tok")
			assert.Nil(t, identity)
			require.ErrorIs(t, err, tt.want)

			var gateErr *auth.Error
			require.ErrorAs(t, err, &gateErr)
			assert.Equal(t, tt.wantCode, gateErr.Code)
			assert.Equal(t, tt.dirCalls, tt.dir.calls)
		})
	}
}

func TestAuthenticateAbandonsCancelledRequest(t *testing.T) {
	v := &blockingVerifier{}
	d := &fakeDirectory{records: []auth.DirectoryRecord{{Handle: "ada", UserID: "uid-1"}}}
	g := New(v, d, logging.Discard(), metrics.NewCollector())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	identity, err := g.Authenticate(ctx, "Bearer tok")
	assert.Nil(t, identity)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, v.calls)
	assert.Zero(t, d.calls)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	g.Middleware(next).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, d.calls)
}

func TestMiddleware(t *testing.T) {
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := auth.IdentityFromContext(r.Context())
		require.NotNil(t, identity)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(identity.Handle))
	})

	t.Run("passes identity downstream", func(t *testing.T) {
		g := newGate(&fakeVerifier{claims: validClaims()}, &fakeDirectory{records: []auth.DirectoryRecord{{Handle: "ada", UserID: "uid-1"}}})
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()

		g.Middleware(protected).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ada", rec.Body.String())
	})

	rejections := []struct {
		name     string
		header   string
		v        *fakeVerifier
		d        *fakeDirectory
		wantMsg  string
		wantCode any
	}{
		{"missing", "", &fakeVerifier{}, &fakeDirectory{}, "Unauthorized.", nil},
		{"expired", "Bearer tok", &fakeVerifier{err: auth.ErrTokenExpired}, &fakeDirectory{}, "Your ID Token has expired, please log back in.", "auth/id-token-expired"},
		{"bad token", "Bearer tok", &fakeVerifier{err: codedErr{code: "auth/argument-error"}}, &fakeDirectory{}, "Invalid token.", "auth/argument-error"},
		{"unknown user", "Bearer tok", &fakeVerifier{claims: validClaims()}, &fakeDirectory{}, "User not found.", nil},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newGate(tt.v, tt.d).Middleware(next).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusForbidden, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["msg"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}
