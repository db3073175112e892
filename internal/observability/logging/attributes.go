package logging

import (
	"log/slog"
	"net/url"
	"regexp"
)

// RedactedDSN is a database connection string that logs without its password.
// Both URL DSNs (postgres://user:pw@host/db) and key/value DSNs (password=pw) are handled;
// sqlite file paths pass through unchanged.
type RedactedDSN string

var kvPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// LogValue implements slog.LogValuer
func (s RedactedDSN) LogValue() slog.Value {
	raw := string(s)
	if u, err := url.Parse(raw); err == nil && u.User != nil {
		return slog.StringValue(u.Redacted())
	}
	return slog.StringValue(kvPassword.ReplaceAllString(raw, "${1}xxxxx"))
}

// RedactDSN returns a safely loggable DSN
func RedactDSN(dsn string) slog.LogValuer {
	return RedactedDSN(dsn)
}
