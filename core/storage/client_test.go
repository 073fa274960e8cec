package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/core/storage"
	"catalog-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "reports").Return(true, nil)

		require.NoError(t, storage.EnsureBucket(ctx, m, "reports", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "reports").Return(false, nil)
		m.On("MakeBucket", ctx, "reports", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		require.NoError(t, storage.EnsureBucket(ctx, m, "reports", "eu-west-1"))
		m.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "reports").Return(false, assert.AnError)

		assert.ErrorIs(t, storage.EnsureBucket(ctx, m, "reports", ""), assert.AnError)
	})
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "failures.csv")
	require.NoError(t, os.WriteFile(path, []byte("sku,error\n"), 0o644))

	m := new(mocks.Client)
	m.On("PutObject", ctx, "reports", "run/failures.csv", mock.Anything, int64(10),
		minio.PutObjectOptions{ContentType: "text/csv"}).Return(minio.UploadInfo{}, nil)

	require.NoError(t, storage.UploadFile(ctx, m, "reports", "run/failures.csv", path, "text/csv"))
	m.AssertExpectations(t)

	assert.Error(t, storage.UploadFile(ctx, m, "reports", "x", filepath.Join(t.TempDir(), "missing"), "text/csv"))
}
