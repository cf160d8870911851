// Package storage provides blob storage backends for uploaded assets.
package storage

import (
	"context"
	"io"
)

// Backend abstracts the blob store that holds uploaded image bytes.
// The filesystem implementation is the only one in use; the interface is
// shaped so an object-store backend can slot in without touching callers.
type Backend interface {
	// Upload writes the object's bytes under key, replacing any existing object.
	Upload(ctx context.Context, key string, reader io.Reader) error
	// Delete removes the object. Deleting a missing object is an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is present under key.
	Exists(ctx context.Context, key string) (bool, error)
}
