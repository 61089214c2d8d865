package memory

import (
	"context"
	"sort"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/history"
)

// HistoryRepo is the in-memory history repository.
type HistoryRepo struct {
	store *Store
}

// NewHistoryRepo creates a history repository over the store.
func NewHistoryRepo(store *Store) *HistoryRepo {
	return &HistoryRepo{store: store}
}

func (r *HistoryRepo) Append(_ context.Context, e *history.HistoryEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.histories = append(r.store.histories, cloneHistory(e))
	return nil
}

func (r *HistoryRepo) ListByDocument(_ context.Context, kind documents.Kind, documentID id.ID) ([]*history.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*history.HistoryEntry
	for _, e := range r.store.histories {
		if e.DocumentKind == kind && e.DocumentID == documentID {
			result = append(result, cloneHistory(e))
		}
	}
	// Newest first; UUIDv7 ids are time-ordered so the id tie-break is stable.
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})
	return result, nil
}
