// internal/tls/config.go

// Package tls builds the server TLS configuration.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"whatsnext/internal/observability/logging"
)

// expiryWarning is how far ahead of expiry a certificate starts being reported
const expiryWarning = 14 * 24 * time.Hour

// Config holds the TLS configuration
type Config struct {
	// Logger is the logger to use
	Logger *logging.Logger

	// CertPath is the path to the server certificate
	CertPath string

	// KeyPath is the path to the server key
	KeyPath string

	// Now overrides the clock used for the expiry check, for tests
	Now func() time.Time
}

// GetTLSConfig creates a TLS configuration for the server
func (c *Config) GetTLSConfig() (*tls.Config, error) {
	c.Logger.Debug("Initializing TLS configuration")

	cert, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse TLS certificate: %w", err)
	}
	if err := c.checkExpiry(leaf); err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12, // Enforce minimum TLS version
	}

	c.Logger.Info("TLS configuration successful", "subject", leaf.Subject.CommonName, "not_after", leaf.NotAfter)
	return tlsConfig, nil
}

// checkExpiry rejects expired certificates and warns about ones close to expiry
func (c *Config) checkExpiry(cert *x509.Certificate) error {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	if now.After(cert.NotAfter) {
		return fmt.Errorf("TLS certificate expired at %s", cert.NotAfter.Format(time.RFC3339))
	}
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("TLS certificate not valid before %s", cert.NotBefore.Format(time.RFC3339))
	}
	if remaining := cert.NotAfter.Sub(now); remaining < expiryWarning {
		c.Logger.Warn("TLS certificate expires soon", "not_after", cert.NotAfter, "remaining", remaining.Round(time.Hour))
	}
	return nil
}
