package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for writing and reading whole blobs (journals).
type Store interface {
	// Put writes a blob atomically, replacing any existing blob with that name.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the full contents of a blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
