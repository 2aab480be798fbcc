// Package storage provides read access to an S3 compatible object store.
//
// Schema documents are normally read from a local directory, but CI pipelines
// that generate them often publish to a bucket instead. This package wraps the
// MinIO Go client behind a small Client interface so the schema loader can list
// and download documents, and so tests can substitute core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	idx, err := schema.LoadFromStorage(ctx, client, cfg.Storage.Bucket, "schema/")
package storage
