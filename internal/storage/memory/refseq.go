package memory

import (
	"context"
)

// SeqStore is the in-memory refseq.Store.
type SeqStore struct {
	store *Store
}

// NewSeqStore creates a sequence store over the store.
func NewSeqStore(store *Store) *SeqStore {
	return &SeqStore{store: store}
}

// Next returns the next value for key, starting at 1.
func (s *SeqStore) Next(_ context.Context, key string) (int64, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	s.store.sequences[key]++
	return s.store.sequences[key], nil
}
