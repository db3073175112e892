// Package gate authenticates requests to protected routes.
//
// A request passes the gate when its Authorization header carries a bearer
// token that the identity provider verifies and whose subject resolves to
// exactly one user record in the directory. The resulting auth.Identity is
// attached to the request context for downstream handlers.
package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"whatsnext/internal/auth"
	"whatsnext/internal/httputils"
	"whatsnext/internal/observability/logging"
	"whatsnext/internal/observability/metrics"
)

const bearerPrefix = "Bearer "

// lookupLimit asks the directory for one record more than we accept, so
// duplicate records are detected instead of silently picking the first.
const lookupLimit = 2

// Gate verifies bearer tokens and resolves them to local identities
type Gate struct {
	verifier  auth.TokenVerifier
	directory auth.Directory
	logger    *logging.Logger
	metrics   *metrics.Collector
}

// New creates a gate over the given verifier and directory
func New(verifier auth.TokenVerifier, directory auth.Directory, logger *logging.Logger, metrics *metrics.Collector) *Gate {
	return &Gate{
		verifier:  verifier,
		directory: directory,
		logger:    logger.WithModule("auth.gate"),
		metrics:   metrics,
	}
}

// coded is implemented by provider errors that carry an error code
type coded interface {
	ErrorCode() string
}

func providerCode(err error) string {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// Authenticate resolves an Authorization header value to an identity.
// Every returned error is an *auth.Error.
func (g *Gate) Authenticate(ctx context.Context, header string) (*auth.Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, auth.NewError(auth.KindMissingToken, "", nil)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return nil, auth.NewError(auth.KindMissingToken, "", nil)
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, auth.NewError(auth.KindTokenExpired, "auth/id-token-expired", err)
		}
		return nil, auth.NewError(auth.KindInvalidToken, providerCode(err), err)
	}
	if claims == nil || claims.Subject == "" {
		return nil, auth.NewError(auth.KindInvalidToken, "", errors.New("token has no subject"))
	}

	records, err := g.directory.FindByUserID(ctx, claims.Subject, lookupLimit)
	if err != nil {
		return nil, auth.NewError(auth.KindDirectoryLookupFailed, providerCode(err), err)
	}
	switch len(records) {
	case 0:
		return nil, auth.NewError(auth.KindUserNotFound, "", fmt.Errorf("no user record for subject %q", claims.Subject))
	case 1:
	default:
		return nil, auth.NewError(auth.KindDirectoryLookupFailed, "", fmt.Errorf("%d user records for subject %q", len(records), claims.Subject))
	}

	return &auth.Identity{
		SubjectID: claims.Subject,
		UserID:    records[0].UserID,
		Handle:    records[0].Handle,
		Provider:  g.verifier.Name(),
		Claims:    claims.Values,
	}, nil
}

// rejectionMessage is the client-facing text for a rejection kind
func rejectionMessage(kind auth.Kind) string {
	switch kind {
	case auth.KindTokenExpired:
		return "Your ID Token has expired, please log back in."
	case auth.KindInvalidToken:
		return "Invalid token."
	case auth.KindDirectoryLookupFailed:
		return "Could not resolve user."
	case auth.KindUserNotFound:
		return "User not found."
	default:
		return "Unauthorized."
	}
}

// Middleware rejects unauthenticated requests with 403 and otherwise
// calls next with the identity in the request context
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContextOr(ctx, g.logger)

		identity, err := g.Authenticate(ctx, r.Header.Get("Authorization"))
		if err != nil {
			kind, code := auth.KindOf(err), providerCode(err)

			switch kind {
			case auth.KindMissingToken:
				logger.Info("No token found", "path", r.URL.Path)
			case auth.KindTokenExpired, auth.KindUserNotFound:
				logger.Info("Rejected request", "kind", kind, logging.Err(err))
			default:
				logger.Error("Error while verifying token", "kind", kind, "code", code, logging.Err(err))
			}
			g.metrics.RecordAuthentication(g.verifier.Name(), string(kind))

			body := httputils.Envelope{"success": false, "msg": rejectionMessage(kind)}
			if code != "" {
				body["code"] = code
			}
			httputils.WriteJSON(w, http.StatusForbidden, body)
			return
		}

		logger.Debug("Bearer token valid", "subject", identity.SubjectID, "handle", identity.Handle)
		g.metrics.RecordAuthentication(g.verifier.Name(), "ok")

		ctx = auth.ContextWithIdentity(ctx, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
