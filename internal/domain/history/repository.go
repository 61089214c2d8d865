package history

import (
	"context"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
)

// Repository is the persistence contract for history entries.
// Append-only; no update or delete operations exist.
type Repository interface {
	Append(ctx context.Context, e *HistoryEntry) error

	// ListByDocument returns entries for one document, newest first
	// (created_at DESC, id DESC for a deterministic tie-break).
	ListByDocument(ctx context.Context, kind documents.Kind, documentID id.ID) ([]*HistoryEntry, error)
}
