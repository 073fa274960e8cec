package cachestore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"catalog-sync/core/models"
	"catalog-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectStore keeps the document as one object in a bucket.
type ObjectStore struct {
	client storage.Client
	bucket string
	key    string
}

// NewObjectStore returns a store for bucket/key.
func NewObjectStore(client storage.Client, bucket, key string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, key: key}
}

func (s *ObjectStore) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *ObjectStore) Load(ctx context.Context) (map[string]models.Match, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return map[string]models.Match{}, nil
		}
		return nil, fmt.Errorf("failed to get cache object: %w", err)
	}
	defer obj.Close()

	// MinIO defers the request until the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return map[string]models.Match{}, nil
		}
		return nil, fmt.Errorf("failed to read cache object: %w", err)
	}
	return Decode(data)
}

func (s *ObjectStore) Save(ctx context.Context, entries map[string]models.Match) error {
	data, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload cache object: %w", err)
	}
	return nil
}

func (s *ObjectStore) Clear(ctx context.Context) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.key, minio.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to remove cache object: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
