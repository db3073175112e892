// internal/server/factory.go
package server

import (
	"context"
	"crypto/tls"
	"fmt"

	"whatsnext/internal/api"
	"whatsnext/internal/auth/gate"
	"whatsnext/internal/authz"
	"whatsnext/internal/config"
	identityfactory "whatsnext/internal/identity/factory"
	"whatsnext/internal/objectstore"
	"whatsnext/internal/observability"
	"whatsnext/internal/observability/logging"
	"whatsnext/internal/store/sqlstore"
	tlsconfig "whatsnext/internal/tls"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	logger.Info("Configuration loaded",
		"environment", cfg.Environment,
		"identity_provider", cfg.Identity.Provider,
		"database_driver", cfg.Database.Driver,
		"database", logging.RedactDSN(cfg.Database.DSN),
		"storage_driver", cfg.Storage.Driver,
	)

	// Initialize TLS configuration
	var tlsCfg *tls.Config
	if cfg.TLS.Enabled {
		tlsSetup := &tlsconfig.Config{
			Logger:   logger,
			CertPath: cfg.TLS.CertPath,
			KeyPath:  cfg.TLS.KeyPath,
		}
		tlsCfg, err = tlsSetup.GetTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}

	// Open the document store
	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize identity provider
	provider, err := identityfactory.NewFromConfig(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	// Initialize object store
	objects, err := objectstore.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	routerConfig := api.Config{
		MaxImageBytes: cfg.Storage.MaxImageBytes,
	}
	if local, ok := objects.(*objectstore.Local); ok {
		routerConfig.UploadsDir = local.Dir()
	}
	if cfg.IsProduction() {
		routerConfig.StaticDir = cfg.Server.StaticDir
	}

	authGate := gate.New(provider, db, logger, obs.Metrics)
	router := api.New(routerConfig, db, provider, objects, authGate, authz.NewOwnerOnly(logger), logger, obs.Metrics)
	router.Use(obs.Middleware)

	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	return New(serverConfig, router.Handler(), obs.MetricsHandler(), logger, db), nil
}
