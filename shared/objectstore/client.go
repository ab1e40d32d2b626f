package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrStorageWrite wraps any failure persisting an image blob. Treated as
// transient by the job retry policy.
var ErrStorageWrite = errors.New("storage write failed")

// Config holds MinIO/S3 connection configuration
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Client stores image blobs in MinIO-compatible object storage.
type Client struct {
	mc     *minio.Client
	config *Config
	logger *slog.Logger
}

// NewClient creates a new object storage client
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	mc, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	logger.Info("Object storage client initialized",
		slog.String("endpoint", config.Endpoint),
		slog.Bool("ssl", config.UseSSL),
	)

	return &Client{
		mc:     mc,
		config: config,
		logger: logger,
	}, nil
}

// ObjectKey derives the storage key for an uploaded image. The store/location
// prefix is omitted when empty.
func ObjectKey(lojaID, filename string, now time.Time) string {
	prefix := ""
	if lojaID != "" {
		prefix = lojaID + "/"
	}
	return fmt.Sprintf("%s%s_%s", prefix, now.UTC().Format("20060102_150405"), filename)
}

// PutImage uploads image bytes to the given bucket, creating the bucket if it
// does not exist, and returns the public URL of the stored object.
func (c *Client) PutImage(ctx context.Context, bucket, lojaID, filename string, data []byte) (string, error) {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("%w: checking bucket %s: %v", ErrStorageWrite, bucket, err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("%w: creating bucket %s: %v", ErrStorageWrite, bucket, err)
		}
		c.logger.Info("Bucket created", slog.String("bucket", bucket))
	}

	key := ObjectKey(lojaID, filename, time.Now())

	_, err = c.mc.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("%w: putting object %s/%s: %v", ErrStorageWrite, bucket, key, err)
	}

	c.logger.Debug("Image stored",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("size", len(data)),
	)

	scheme := "http"
	if c.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.config.Endpoint, bucket, key), nil
}
