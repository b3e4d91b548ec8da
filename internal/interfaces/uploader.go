package interfaces

import "context"

// BlobStore persists media bytes under a relative, slash separated path.
type BlobStore interface {
	Put(ctx context.Context, path string, contentType string, b []byte) error
}
