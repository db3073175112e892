package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"whatsnext/internal/observability/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T, notBefore, notAfter time.Time) (certPath, keyPath string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certPath, keyPath
}

func TestGetTLSConfig(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid certificate", func(t *testing.T) {
		certPath, keyPath := writeSelfSigned(t, now.Add(-time.Hour), now.Add(365*24*time.Hour))
		c := &Config{Logger: logging.Discard(), CertPath: certPath, KeyPath: keyPath, Now: func() time.Time { return now }}

		cfg, err := c.GetTLSConfig()
		require.NoError(t, err)
		assert.Len(t, cfg.Certificates, 1)
		assert.EqualValues(t, 0x0303, cfg.MinVersion)
	})

	t.Run("expired certificate", func(t *testing.T) {
		certPath, keyPath := writeSelfSigned(t, now.Add(-48*time.Hour), now.Add(-time.Hour))
		c := &Config{Logger: logging.Discard(), CertPath: certPath, KeyPath: keyPath, Now: func() time.Time { return now }}

		_, err := c.GetTLSConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("missing files", func(t *testing.T) {
		c := &Config{Logger: logging.Discard(), CertPath: "/nonexistent/cert.pem", KeyPath: "/nonexistent/key.pem"}
		_, err := c.GetTLSConfig()
		assert.Error(t, err)
	})
}
