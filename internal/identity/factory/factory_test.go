package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"whatsnext/internal/config"
	"whatsnext/internal/observability/logging"
	"whatsnext/internal/store/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig(t *testing.T) {
	logger := logging.Discard()

	t.Run("local", func(t *testing.T) {
		db, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "id.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		cfg := &config.Config{}
		cfg.Identity.Provider = "local"
		cfg.Identity.Local.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Identity.Local.Issuer = "whatsnext"
		cfg.Identity.Local.TTL = time.Hour

		p, err := NewFromConfig(cfg, db, logger)
		require.NoError(t, err)
		assert.Equal(t, "local", p.Name())
	})

	t.Run("local without accounts", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Identity.Provider = "local"
		_, err := NewFromConfig(cfg, nil, logger)
		assert.Error(t, err)
	})

	t.Run("firebase", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Identity.Provider = "firebase"
		cfg.Identity.Firebase.ProjectID = "whatsnext-test"
		cfg.Identity.Firebase.APIKey = "key"

		p, err := NewFromConfig(cfg, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "firebase", p.Name())
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Identity.Provider = "ldap"
		_, err := NewFromConfig(cfg, nil, logger)
		assert.Error(t, err)
	})
}
