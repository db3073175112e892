// Package firebase adapts the hosted Firebase Authentication service.
//
// Accounts are created and signed in through the Identity Toolkit REST API;
// ID tokens are verified locally with go-oidc against the securetoken issuer
// of the configured project and Google's published signing keys.
package firebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"whatsnext/internal/auth"
	"whatsnext/internal/identity"
	"whatsnext/internal/observability/logging"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/goccy/go-json"
)

// Defaults for the hosted service
const (
	DefaultAuthEndpoint = "https://identitytoolkit.googleapis.com/v1"
	DefaultKeysURL      = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	issuerPrefix        = "https://securetoken.google.com/"
)

// Config holds Firebase provider configuration
type Config struct {
	// ProjectID is the Firebase project; it is the expected token audience
	ProjectID string

	// APIKey is the web API key used for the REST sign-up and sign-in calls
	APIKey string

	// AuthEndpoint overrides the Identity Toolkit base URL (emulators, tests)
	AuthEndpoint string

	// KeysURL overrides the JWKS location of the token signing keys
	KeysURL string

	// KeySet overrides remote key fetching entirely, for tests
	KeySet oidc.KeySet

	// HTTPClient is used for REST calls; defaults to a client with a 10s timeout
	HTTPClient *http.Client

	// Now overrides the verifier clock, for tests
	Now func() time.Time
}

// Provider implements identity.Provider against Firebase Authentication
type Provider struct {
	logger   *logging.Logger
	verifier *oidc.IDTokenVerifier
	client   *http.Client
	endpoint string
	apiKey   string
}

// New creates a Firebase provider
func New(config Config, logger *logging.Logger) (*Provider, error) {
	logger = logger.WithModule("identity.firebase")

	if config.ProjectID == "" {
		return nil, fmt.Errorf("firebase project ID is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("firebase API key is required")
	}

	endpoint := strings.TrimRight(config.AuthEndpoint, "/")
	if endpoint == "" {
		endpoint = DefaultAuthEndpoint
	}
	keysURL := config.KeysURL
	if keysURL == "" {
		keysURL = DefaultKeysURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	keySet := config.KeySet
	if keySet == nil {
		// the key set outlives any single request, so it gets its own context
		keyCtx := oidc.ClientContext(context.Background(), client)
		keySet = oidc.NewRemoteKeySet(keyCtx, keysURL)
	}

	issuer := issuerPrefix + config.ProjectID
	logger.Debug("Initializing Firebase token verifier", "issuer", issuer, "keys_url", keysURL)

	return &Provider{
		logger: logger,
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID: config.ProjectID,
			Now:      config.Now,
		}),
		client:   client,
		endpoint: endpoint,
		apiKey:   config.APIKey,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "firebase"
}

// Verify implements auth.TokenVerifier
func (p *Provider) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	idToken, err := p.verifier.Verify(ctx, token)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, auth.NewError(auth.KindTokenExpired, identity.CodeTokenExpired, err)
		}
		return nil, identity.NewError(identity.CodeArgumentError, "ID token verification failed", err)
	}

	values := map[string]any{}
	if err := idToken.Claims(&values); err != nil {
		return nil, identity.NewError(identity.CodeArgumentError, "failed to parse token claims", err)
	}

	return &auth.Claims{Subject: idToken.Subject, Values: values}, nil
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type passwordResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
}

type deleteRequest struct {
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an account with email and password
func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	return p.passwordCall(ctx, "accounts:signUp", email, password)
}

// SignIn signs in with email and password
func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	return p.passwordCall(ctx, "accounts:signInWithPassword", email, password)
}

// DeleteAccount deletes the account the session's ID token belongs to
func (p *Provider) DeleteAccount(ctx context.Context, session *identity.Session) error {
	return p.call(ctx, "accounts:delete", deleteRequest{IDToken: session.IDToken}, nil)
}

func (p *Provider) passwordCall(ctx context.Context, method, email, password string) (*identity.Session, error) {
	var out passwordResponse
	in := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := p.call(ctx, method, in, &out); err != nil {
		return nil, err
	}
	if out.LocalID == "" || out.IDToken == "" {
		return nil, identity.NewError(identity.CodeInternalError, method+" response without token", nil)
	}
	return &identity.Session{UserID: out.LocalID, IDToken: out.IDToken}, nil
}

// call posts in to an Identity Toolkit method and decodes the reply into out
// when out is not nil
func (p *Provider) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return identity.NewError(identity.CodeInternalError, "encode request", err)
	}

	target := p.endpoint + "/" + method + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return identity.NewError(identity.CodeInternalError, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return identity.NewError(identity.CodeInternalError, method+" request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identity.NewError(identity.CodeInternalError, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if err := json.Unmarshal(raw, &e); err != nil || e.Error.Message == "" {
			return identity.NewError(identity.CodeInternalError, fmt.Sprintf("%s returned %d", method, resp.StatusCode), err)
		}
		p.logger.Debug("Identity Toolkit rejected request", "method", method, "reason", e.Error.Message)
		return identity.NewError(codeForReason(e.Error.Message), e.Error.Message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return identity.NewError(identity.CodeInternalError, "decode response", err)
	}
	return nil
}

// codeForReason maps an Identity Toolkit error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" to a provider code
func codeForReason(message string) string {
	reason, _, _ := strings.Cut(message, " ")
	switch reason {
	case "EMAIL_EXISTS":
		return identity.CodeEmailAlreadyInUse
	case "EMAIL_NOT_FOUND":
		return identity.CodeUserNotFound
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return identity.CodeWrongPassword
	case "INVALID_EMAIL":
		return identity.CodeInvalidEmail
	case "WEAK_PASSWORD":
		return identity.CodeWeakPassword
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return identity.CodeTooManyRequests
	case "USER_DISABLED":
		return "auth/user-disabled"
	default:
		return identity.CodeInternalError
	}
}
