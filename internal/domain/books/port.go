package books

import "context"

// BlobStore keeps raw bytes under a flat key. Get returns ErrNotFound
// (possibly wrapped) for unknown keys.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Repository port (interface untuk persistence of analysis documents)
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Find(ctx context.Context, id ProjectID) (*Document, error)
}
