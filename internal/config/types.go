// internal/config/types.go
package config

import "time"

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config represents the complete application configuration
type Config struct {
	// Environment is development or production
	Environment string

	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
		// StaticDir holds the built client served in production (empty disables it)
		StaticDir string
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration
	TLS struct {
		// Enabled indicates whether TLS is enabled
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
	}

	// Identity holds identity provider configuration
	Identity struct {
		// Provider is local or firebase
		Provider string

		Firebase struct {
			ProjectID    string
			APIKey       string
			AuthEndpoint string
		}

		Local struct {
			// Secret signs issued tokens, at least 32 bytes
			Secret string
			Issuer string
			TTL    time.Duration
		}
	}

	// Database holds the document store configuration
	Database struct {
		// Driver is sqlite or postgres
		Driver string
		DSN    string
	}

	// Storage holds object store configuration
	Storage struct {
		// Driver is local or s3
		Driver string
		// LocalPath is where the local driver writes files
		LocalPath string
		// PublicURL prefixes the URLs handed back to clients
		PublicURL string
		// MaxImageBytes caps the size of an uploaded image
		MaxImageBytes int64

		S3 struct {
			Bucket          string
			Region          string
			AccessKeyID     string
			SecretAccessKey string
			// Endpoint points at an S3 compatible service instead of AWS
			Endpoint string
		}
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
		// LogFormat is the log format (json, text, console)
		LogFormat string
	}
}

// IsProduction reports whether the production environment is configured
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
