// Package factory builds the configured identity provider.
package factory

import (
	"fmt"

	"whatsnext/internal/config"
	"whatsnext/internal/identity"
	"whatsnext/internal/identity/firebase"
	"whatsnext/internal/identity/local"
	"whatsnext/internal/observability/logging"
)

// NewFromConfig creates the identity provider selected by cfg.Identity.Provider.
// accounts backs the local provider and is ignored otherwise.
func NewFromConfig(cfg *config.Config, accounts local.Accounts, logger *logging.Logger) (identity.Provider, error) {
	logger = logger.WithModule("identity.factory")

	switch cfg.Identity.Provider {
	case "firebase":
		p, err := firebase.New(firebase.Config{
			ProjectID:    cfg.Identity.Firebase.ProjectID,
			APIKey:       cfg.Identity.Firebase.APIKey,
			AuthEndpoint: cfg.Identity.Firebase.AuthEndpoint,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase identity provider: %w", err)
		}
		logger.Info("Firebase identity provider enabled", "project_id", cfg.Identity.Firebase.ProjectID)
		return p, nil

	case "local":
		if accounts == nil {
			return nil, fmt.Errorf("local identity provider requires an account store")
		}
		p, err := local.New(local.Config{
			Secret: cfg.Identity.Local.Secret,
			Issuer: cfg.Identity.Local.Issuer,
			TTL:    cfg.Identity.Local.TTL,
		}, accounts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local identity provider: %w", err)
		}
		logger.Info("Local identity provider enabled", "issuer", cfg.Identity.Local.Issuer, "ttl", cfg.Identity.Local.TTL)
		return p, nil

	default:
		return nil, fmt.Errorf("unknown identity provider: %q", cfg.Identity.Provider)
	}
}
