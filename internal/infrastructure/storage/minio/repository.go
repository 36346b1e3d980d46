package minio

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.ErrCodeExportUploadFailed, "upload failed")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// ObjectStore archives rendered exports in the export bucket.
type ObjectStore interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	Exists(ctx context.Context, objectKey string) (bool, error)
	GetMetadata(ctx context.Context, objectKey string) (*ObjectMetadata, error)
	List(ctx context.Context, prefix string, maxKeys int) ([]*ObjectMetadata, error)
	Delete(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type UploadRequest struct {
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

type ObjectMetadata struct {
	ObjectKey    string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	Metadata     map[string]string
}

type objectStore struct {
	client *Client
	logger logging.Logger
}

func NewObjectStore(client *Client, log logging.Logger) ObjectStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &objectStore{client: client, logger: log}
}

func (r *objectStore) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.ObjectKey == "" || strings.HasPrefix(req.ObjectKey, "/") {
		return nil, ErrInvalidRequest
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := r.client.api.PutObject(ctx, r.client.bucket, req.ObjectKey,
		bytes.NewReader(req.Data), int64(len(req.Data)),
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: req.Metadata})
	if err != nil {
		r.logger.Error("upload failed", logging.String("object", req.ObjectKey), logging.Err(err))
		return nil, ErrUploadFailed.WithCause(err).WithDetail(req.ObjectKey)
	}

	r.logger.Debug("object uploaded", logging.String("object", req.ObjectKey), logging.Int64("size", info.Size))
	return &UploadResult{
		Bucket:     r.client.bucket,
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

func (r *objectStore) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := r.client.api.StatObject(ctx, r.client.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat object")
	}
	return true, nil
}

func (r *objectStore) GetMetadata(ctx context.Context, objectKey string) (*ObjectMetadata, error) {
	info, err := r.client.api.StatObject(ctx, r.client.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound.WithDetail(objectKey)
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat object")
	}
	return &ObjectMetadata{
		ObjectKey:    objectKey,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}, nil
}

// List returns up to maxKeys objects under prefix; maxKeys <= 0 means 1000.
func (r *objectStore) List(ctx context.Context, prefix string, maxKeys int) ([]*ObjectMetadata, error) {
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []*ObjectMetadata
	for obj := range r.client.api.ListObjects(ctx, r.client.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "failed to list objects")
		}
		out = append(out, &ObjectMetadata{
			ObjectKey:    obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
		if len(out) >= maxKeys {
			break
		}
	}
	return out, nil
}

func (r *objectStore) Delete(ctx context.Context, objectKey string) error {
	if err := r.client.api.RemoveObject(ctx, r.client.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to remove object")
	}
	return nil
}

func (r *objectStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = r.client.presignExpiry
	}
	u, err := r.client.api.PresignedGetObject(ctx, r.client.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "failed to presign object")
	}
	return u.String(), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

//Personal.AI order the ending
