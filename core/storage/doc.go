// Package storage wraps the MinIO client used for S3-compatible object storage.
//
// Two parts of a run use it: the s3 cache driver keeps the SKU cache document
// in a bucket, and the sync command can upload its report files next to it.
//
// # Client Interface
//
// Client exposes only the operations those two callers need, which keeps the
// testify mock in core/storage/mocks small.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
