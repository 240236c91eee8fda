package repository

import "context"

// DocumentStore keeps one JSON document per key.
//
// Update runs a read-modify-write of a single document. fn receives nil when
// the key does not exist yet; returning a nil document leaves the stored
// value untouched. Implementations serialize concurrent updates of the same
// key where the backend allows it, otherwise the last write wins.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, doc []byte) error
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}
