// Package objectstore stores uploaded files and hands back their public URL.
// There are two drivers: the local filesystem and Amazon S3 (or any S3
// compatible service).
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whatsnext/internal/config"
	"whatsnext/internal/observability/logging"
)

// Driver names
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// ErrInvalidKey is returned for keys that are empty or escape the store
var ErrInvalidKey = errors.New("invalid object key")

// Driver uploads objects
type Driver interface {
	// Name identifies the driver in logs and metrics
	Name() string

	// Upload stores data under key and returns the URL clients fetch it from
	Upload(ctx context.Context, key, contentType string, data []byte) (url string, err error)
}

func checkKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// NewFromConfig creates the driver selected by cfg.Storage.Driver
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Driver, error) {
	switch cfg.Storage.Driver {
	case DriverLocal:
		return NewLocal(cfg.Storage.LocalPath, cfg.Storage.PublicURL, logger)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			Endpoint:        cfg.Storage.S3.Endpoint,
			PublicURL:       cfg.Storage.PublicURL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}
