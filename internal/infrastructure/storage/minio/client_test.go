package minio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MRM-Billing/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucketName string, cfg *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, cfg).Error(0)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func (m *MockMinIOAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func objectChan(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func newTestClient(api MinIOAPI) *Client {
	return newClientWithAPI(api, config.MinIOConfig{Bucket: "mrm-exports"}, logging.NewNopLogger())
}

func TestNewClientWithAPI_Defaults(t *testing.T) {
	c := newClientWithAPI(&MockMinIOAPI{}, config.MinIOConfig{}, nil)
	assert.Equal(t, config.DefaultMinIOBucket, c.Bucket())
	assert.Equal(t, "us-east-1", c.region)
	assert.Equal(t, time.Hour, c.presignExpiry)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), config.MinIOConfig{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestEnsureBucket_CreatesMissingBucket(t *testing.T) {
	api := &MockMinIOAPI{}
	api.On("BucketExists", mock.Anything, "mrm-exports").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "mrm-exports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	api.On("SetBucketLifecycle", mock.Anything, "mrm-exports", mock.MatchedBy(func(cfg *lifecycle.Configuration) bool {
		return len(cfg.Rules) == 1 && int(cfg.Rules[0].Expiration.Days) == ExportRetentionDays
	})).Return(nil)

	require.NoError(t, newTestClient(api).EnsureBucket(context.Background()))
	api.AssertExpectations(t)
}

func TestEnsureBucket_ExistingBucketSkipsCreate(t *testing.T) {
	api := &MockMinIOAPI{}
	api.On("BucketExists", mock.Anything, "mrm-exports").Return(true, nil)
	api.On("SetBucketLifecycle", mock.Anything, "mrm-exports", mock.Anything).Return(errors.New("not supported"))

	require.NoError(t, newTestClient(api).EnsureBucket(context.Background()))
	api.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureBucket_MakeBucketFails(t *testing.T) {
	api := &MockMinIOAPI{}
	api.On("BucketExists", mock.Anything, "mrm-exports").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "mrm-exports", mock.Anything).Return(errors.New("denied"))

	err := newTestClient(api).EnsureBucket(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		api := &MockMinIOAPI{}
		api.On("BucketExists", mock.Anything, "mrm-exports").Return(true, nil)
		assert.NoError(t, newTestClient(api).HealthCheck(context.Background()))
	})
	t.Run("bucket missing", func(t *testing.T) {
		api := &MockMinIOAPI{}
		api.On("BucketExists", mock.Anything, "mrm-exports").Return(false, nil)
		err := newTestClient(api).HealthCheck(context.Background())
		assert.True(t, apperrors.IsNotFound(err))
	})
	t.Run("unreachable", func(t *testing.T) {
		api := &MockMinIOAPI{}
		api.On("BucketExists", mock.Anything, "mrm-exports").Return(false, errors.New("dial tcp"))
		err := newTestClient(api).HealthCheck(context.Background())
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
	})
}

func TestStats(t *testing.T) {
	older := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	api := &MockMinIOAPI{}
	api.On("ListObjects", mock.Anything, "mrm-exports", minio.ListObjectsOptions{Prefix: "fy=2025/", Recursive: true}).
		Return(objectChan(
			minio.ObjectInfo{Key: "fy=2025/apr/a.csv", Size: 100, LastModified: older},
			minio.ObjectInfo{Key: "fy=2025/may/b.csv", Size: 50, LastModified: newer},
		))

	stats, err := newTestClient(api).Stats(context.Background(), "fy=2025/")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ObjectCount)
	assert.Equal(t, int64(150), stats.TotalSize)
	assert.Equal(t, newer, stats.LastModified)
}

//Personal.AI order the ending
