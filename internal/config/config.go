// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// EnvPrefix is prepended to every setting name when read from the environment
const EnvPrefix = "WHATSNEXT"

var (
	environments      = []string{EnvDevelopment, EnvProduction}
	identityProviders = []string{"local", "firebase"}
	databaseDrivers   = []string{"sqlite", "postgres"}
	storageDrivers    = []string{"local", "s3"}
	logFormats        = []string{"json", "text", "console"}
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// It's okay if the config file doesn't exist, but other errors should be reported
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	config := &Config{}
	var err error

	config.Environment = strings.ToLower(v.GetString("ENVIRONMENT"))

	// Server
	config.Server.Address = v.GetString("SERVER_ADDR")
	if config.Server.ShutdownTimeout, err = duration(v, "SHUTDOWN_TIMEOUT"); err != nil {
		return nil, err
	}
	config.Server.StaticDir = v.GetString("STATIC_DIR")
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// TLS
	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")

	// Identity
	config.Identity.Provider = strings.ToLower(v.GetString("IDENTITY_PROVIDER"))
	config.Identity.Firebase.ProjectID = v.GetString("FIREBASE_PROJECT_ID")
	config.Identity.Firebase.APIKey = v.GetString("FIREBASE_API_KEY")
	config.Identity.Firebase.AuthEndpoint = v.GetString("FIREBASE_AUTH_ENDPOINT")
	config.Identity.Local.Secret = v.GetString("LOCAL_TOKEN_SECRET")
	config.Identity.Local.Issuer = v.GetString("LOCAL_TOKEN_ISSUER")
	if config.Identity.Local.TTL, err = duration(v, "LOCAL_TOKEN_TTL"); err != nil {
		return nil, err
	}

	// Database
	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.DSN = v.GetString("DATABASE_DSN")

	// Storage
	config.Storage.Driver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	config.Storage.LocalPath = v.GetString("STORAGE_LOCAL_PATH")
	config.Storage.PublicURL = strings.TrimRight(v.GetString("STORAGE_PUBLIC_URL"), "/")
	config.Storage.MaxImageBytes = v.GetInt64("STORAGE_MAX_IMAGE_BYTES")
	config.Storage.S3.Bucket = v.GetString("STORAGE_S3_BUCKET")
	config.Storage.S3.Region = v.GetString("STORAGE_S3_REGION")
	config.Storage.S3.AccessKeyID = v.GetString("STORAGE_S3_ACCESS_KEY_ID")
	config.Storage.S3.SecretAccessKey = v.GetString("STORAGE_S3_SECRET_ACCESS_KEY")
	config.Storage.S3.Endpoint = v.GetString("STORAGE_S3_ENDPOINT")

	// Observability
	config.Observability.LogLevel = strings.ToLower(v.GetString("LOG_LEVEL"))
	config.Observability.LogFormat = strings.ToLower(v.GetString("LOG_FORMAT"))
	if config.Observability.LogLevel == "" {
		// development gets request-level detail, like the dev request logger it replaces
		config.Observability.LogLevel = "info"
		if config.Environment == EnvDevelopment {
			config.Observability.LogLevel = "debug"
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func duration(v *viper.Viper, name string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToLower(name), err)
	}
	return d, nil
}

func oneOf(name, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q, must be one of %s", name, value, strings.Join(allowed, ", "))
	}
	return nil
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if err := oneOf("environment", cfg.Environment, environments); err != nil {
		return err
	}
	if err := oneOf("log format", cfg.Observability.LogFormat, logFormats); err != nil {
		return err
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}

		// Check if certificate and key files exist
		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}

	if err := validateIdentityConfig(cfg); err != nil {
		return err
	}
	if err := validateDatabaseConfig(cfg); err != nil {
		return err
	}
	return validateStorageConfig(cfg)
}

// validateIdentityConfig validates identity provider configuration
func validateIdentityConfig(cfg *Config) error {
	if err := oneOf("identity provider", cfg.Identity.Provider, identityProviders); err != nil {
		return err
	}

	switch cfg.Identity.Provider {
	case "firebase":
		if cfg.Identity.Firebase.ProjectID == "" {
			return fmt.Errorf("Firebase project ID is required when using the firebase identity provider")
		}
		if cfg.Identity.Firebase.APIKey == "" {
			return fmt.Errorf("Firebase API key is required when using the firebase identity provider")
		}
		if _, err := url.ParseRequestURI(cfg.Identity.Firebase.AuthEndpoint); err != nil {
			return fmt.Errorf("invalid Firebase auth endpoint: %w", err)
		}
	case "local":
		if len(cfg.Identity.Local.Secret) < 32 {
			return fmt.Errorf("local token secret must be at least 32 bytes")
		}
		if cfg.Identity.Local.Issuer == "" {
			return fmt.Errorf("local token issuer is required")
		}
		if cfg.Identity.Local.TTL <= 0 {
			return fmt.Errorf("local token TTL must be positive")
		}
	}

	return nil
}

// validateDatabaseConfig validates document store configuration
func validateDatabaseConfig(cfg *Config) error {
	if err := oneOf("database driver", cfg.Database.Driver, databaseDrivers); err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

// validateStorageConfig validates object store configuration
func validateStorageConfig(cfg *Config) error {
	if err := oneOf("storage driver", cfg.Storage.Driver, storageDrivers); err != nil {
		return err
	}
	if cfg.Storage.MaxImageBytes <= 0 {
		return fmt.Errorf("maximum image size must be positive")
	}

	switch cfg.Storage.Driver {
	case "local":
		if cfg.Storage.LocalPath == "" {
			return fmt.Errorf("local storage path is required when using the local storage driver")
		}
		if cfg.Storage.PublicURL == "" {
			return fmt.Errorf("storage public URL is required when using the local storage driver")
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when using the s3 storage driver")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region is required when using the s3 storage driver")
		}
		if (cfg.Storage.S3.AccessKeyID == "") != (cfg.Storage.S3.SecretAccessKey == "") {
			return fmt.Errorf("S3 access key ID and secret access key must be set together")
		}
	}

	return nil
}
