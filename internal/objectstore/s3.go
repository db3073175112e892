package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"whatsnext/internal/observability/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the S3 driver
type S3Config struct {
	Bucket string
	Region string

	// AccessKeyID and SecretAccessKey are optional; without them the
	// default AWS credential chain is used
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint points at an S3 compatible service. Path-style addressing is used with it.
	Endpoint string

	// PublicURL overrides the object URL prefix, e.g. a CDN in front of the bucket
	PublicURL string
}

// S3 uploads objects to a bucket
type S3 struct {
	logger    *logging.Logger
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3 returns an S3 driver
func NewS3(ctx context.Context, cfg S3Config, logger *logging.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket must not be empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		switch {
		case cfg.Endpoint != "":
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	logger = logger.WithModule("objectstore.s3")
	logger.Debug("S3 object store enabled", "bucket", cfg.Bucket, "region", cfg.Region, "endpoint", cfg.Endpoint)

	return &S3{logger: logger, client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// Name returns the driver name
func (s *S3) Name() string {
	return DriverS3
}

// Upload puts data into the bucket under key
func (s *S3) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Debug("Uploaded object", "key", key, "bytes", len(data))
	return s.publicURL + "/" + key, nil
}
