package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client the export archive uses.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// ExportRetentionDays is how long archived exports are kept before the
// bucket lifecycle removes them.
const ExportRetentionDays = 730

const defaultPresignExpiry = time.Hour

var ErrBucketNotFound = errors.New(errors.ErrCodeNotFound, "bucket not found")

// Client wraps the MinIO API bound to the export bucket.
type Client struct {
	api           MinIOAPI
	bucket        string
	region        string
	presignExpiry time.Duration
	logger        logging.Logger
}

// NewClient connects to MinIO, verifies the connection and makes sure the
// export bucket exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint required")
	}
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	c := newClientWithAPI(api, cfg, log)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to connect to minio")
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", c.bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClientWithAPI(api MinIOAPI, cfg config.MinIOConfig, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = config.DefaultMinIOBucket
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return &Client{
		api:           api,
		bucket:        bucket,
		region:        region,
		presignExpiry: defaultPresignExpiry,
		logger:        log,
	}
}

// EnsureBucket creates the export bucket when missing and applies the
// retention rule.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check bucket existence")
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, fmt.Sprintf("failed to create bucket %s", c.bucket))
		}
		c.logger.Info("Created bucket", logging.String("bucket", c.bucket))
	}

	rules := lifecycle.NewConfiguration()
	rules.Rules = []lifecycle.Rule{
		{
			ID:     "exports-retention",
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(ExportRetentionDays),
			},
		},
	}
	if err := c.api.SetBucketLifecycle(ctx, c.bucket, rules); err != nil {
		c.logger.Warn("Failed to set lifecycle for export bucket", logging.String("bucket", c.bucket), logging.Err(err))
	}
	return nil
}

func (c *Client) Bucket() string { return c.bucket }

func (c *Client) API() MinIOAPI { return c.api }

// HealthCheck reports whether MinIO answers and the export bucket exists.
func (c *Client) HealthCheck(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "minio unreachable")
	}
	if !exists {
		return ErrBucketNotFound.WithDetail(c.bucket)
	}
	return nil
}

// BucketStats summarises the objects stored under prefix.
type BucketStats struct {
	ObjectCount  int64
	TotalSize    int64
	LastModified time.Time
}

func (c *Client) Stats(ctx context.Context, prefix string) (*BucketStats, error) {
	stats := &BucketStats{}
	for obj := range c.api.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "failed to list objects")
		}
		stats.ObjectCount++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
	}
	return stats, nil
}

//Personal.AI order the ending
