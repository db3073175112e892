// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// Int type for integer settings
	Int SettingType = "int"
	// Duration type for settings parsed with time.ParseDuration
	Duration SettingType = "duration"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Secret settings are never printed
	Secret bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Lookup returns the setting with the given name
func (sl SettingList) Lookup(name string) (Setting, bool) {
	for _, s := range sl {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// Settings defines all application settings. Each one is read from
// the environment as WHATSNEXT_<NAME>.
var Settings = SettingList{
	// Server settings
	{Name: "SERVER_ADDR", Short: "Address on which the API server listens", Type: String, Default: ":5000"},
	{Name: "METRICS_ADDR", Short: "Address on which the metrics server listens (empty disables it)", Type: String, Default: ":9090"},
	{Name: "SHUTDOWN_TIMEOUT", Short: "Maximum time to wait for graceful shutdown", Type: Duration, Default: "30s"},
	{Name: "ENVIRONMENT", Short: "Runtime environment (development, production)", Type: String, Default: EnvDevelopment},
	{Name: "STATIC_DIR", Short: "Directory of the built client served in production", Type: String, Default: ""},

	// TLS settings
	{Name: "TLS_ENABLED", Short: "Enable TLS for the server", Type: Bool, Default: false},
	{Name: "TLS_CERT_PATH", Short: "Path to TLS certificate file", Type: String, Default: ""},
	{Name: "TLS_KEY_PATH", Short: "Path to TLS key file", Type: String, Default: ""},

	// Identity provider
	{Name: "IDENTITY_PROVIDER", Short: "Identity provider (local, firebase)", Type: String, Default: "local"},
	{Name: "FIREBASE_PROJECT_ID", Short: "Firebase project ID, the expected token audience", Type: String, Default: ""},
	{Name: "FIREBASE_API_KEY", Short: "Firebase web API key", Type: String, Default: "", Secret: true},
	{Name: "FIREBASE_AUTH_ENDPOINT", Short: "Identity Toolkit base URL", Type: String, Default: "https://identitytoolkit.googleapis.com/v1"},
	{Name: "LOCAL_TOKEN_SECRET", Short: "HMAC secret for locally issued tokens (at least 32 bytes)", Type: String, Default: "", Secret: true},
	{Name: "LOCAL_TOKEN_ISSUER", Short: "Issuer of locally issued tokens", Type: String, Default: "whatsnext"},
	{Name: "LOCAL_TOKEN_TTL", Short: "Lifetime of locally issued tokens", Type: Duration, Default: "1h"},

	// Document store
	{Name: "DATABASE_DRIVER", Short: "Database driver (sqlite, postgres)", Type: String, Default: "sqlite"},
	{Name: "DATABASE_DSN", Short: "Database connection string", Type: String, Default: "file:whatsnext.db?_pragma=foreign_keys(1)", Secret: true},

	// Object store
	{Name: "STORAGE_DRIVER", Short: "Object store driver (local, s3)", Type: String, Default: "local"},
	{Name: "STORAGE_LOCAL_PATH", Short: "Directory used by the local object store", Type: String, Default: "uploads"},
	{Name: "STORAGE_PUBLIC_URL", Short: "Base URL for uploaded objects", Type: String, Default: "http://localhost:5000"},
	{Name: "STORAGE_S3_BUCKET", Short: "S3 bucket name", Type: String, Default: ""},
	{Name: "STORAGE_S3_REGION", Short: "S3 region", Type: String, Default: "us-east-1"},
	{Name: "STORAGE_S3_ACCESS_KEY_ID", Short: "S3 access key ID (empty uses the default credential chain)", Type: String, Default: ""},
	{Name: "STORAGE_S3_SECRET_ACCESS_KEY", Short: "S3 secret access key", Type: String, Default: "", Secret: true},
	{Name: "STORAGE_S3_ENDPOINT", Short: "Custom S3 endpoint for compatible services", Type: String, Default: ""},
	{Name: "STORAGE_MAX_IMAGE_BYTES", Short: "Maximum accepted image size in bytes", Type: Int, Default: 10 << 20},

	// Observability
	{Name: "LOG_LEVEL", Short: "Logging level (debug, info, warn, error)", Type: String, Default: ""},
	{Name: "LOG_FORMAT", Short: "Logging format (json, text, console)", Type: String, Default: "text"},
}
