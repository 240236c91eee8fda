package repository

import (
	"context"
	"fmt"
	"sync"

	"umkmorder/internal/entity"
)

var _ DocumentStore = (*MemoryStore)(nil)

// MemoryStore keeps documents in process memory. Contents are lost on
// restart.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	const op = "repository.MemoryStore.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", op, key, entity.ErrDataNotFound)
	}
	return clone(doc), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = clone(doc)
	return nil
}

func (s *MemoryStore) Update(
	ctx context.Context,
	key string,
	fn func(current []byte) ([]byte, error),
) error {
	const op = "repository.MemoryStore.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	next, err := fn(clone(s.docs[key]))
	if err != nil {
		return err
	}
	if next != nil {
		s.docs[key] = clone(next)
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
