package interfaces

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when a blob key does not exist
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a flat byte store for payloads too large for vector-index
// metadata, keyed by opaque strings.
type BlobStore interface {
	// Set writes value under key, overwriting any existing value
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrBlobNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
