// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface. The archive package uses
// it to mirror daily registry snapshot dumps so that repeated backfills of the same
// month do not have to probe the public archive again.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket bootstrap (see EnsureBucket).
//   - PutObject: uploads a mirrored dump.
//   - GetObject: retrieves a mirrored dump as a stream.
//   - ListObjects: finds the mirrored dump of a month by prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
