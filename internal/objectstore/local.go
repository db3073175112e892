package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"whatsnext/internal/observability/logging"
)

// UploadsPath is the URL path prefix the local driver's files are served under
const UploadsPath = "/uploads/"

// Local writes objects below a base directory
type Local struct {
	logger    *logging.Logger
	baseDir   string
	publicURL string
}

// NewLocal returns a local filesystem driver. The directory is created if needed.
func NewLocal(baseDir, publicURL string, logger *logging.Logger) (*Local, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage path must not be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	logger = logger.WithModule("objectstore.local")
	logger.Debug("Local object store enabled", "path", baseDir)
	return &Local{logger: logger, baseDir: baseDir, publicURL: publicURL}, nil
}

// Name returns the driver name
func (l *Local) Name() string {
	return DriverLocal
}

// Dir returns the base directory, for serving the files
func (l *Local) Dir() string {
	return l.baseDir
}

// Upload writes data to baseDir/key. contentType is implied by the extension.
func (l *Local) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	l.logger.Debug("Stored object", "key", key, "bytes", len(data), "content_type", contentType)
	return l.publicURL + UploadsPath + key, nil
}
