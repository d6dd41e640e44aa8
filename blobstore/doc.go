// Package blobstore provides storage abstraction for run journals.
//
// Store is the interface for writing and reading whole blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory, for tests and ephemeral runs
//   - LocalStore: Local filesystem with atomic rename on write
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error      // Atomic write
//	    Get(ctx, name) ([]byte, error)  // Full read
//	    List(ctx, prefix) ([]string, error)
//	    Delete(ctx, name) error
//	}
package blobstore
