package exitform

import (
	"context"
	"time"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/documents"
)

// Filter narrows exit form lists.
type Filter struct {
	domain.ListFilter

	Status      documents.Status
	Destination string
	DateFrom    time.Time
	DateTo      time.Time
}

// Repository is the persistence contract for exit forms.
// Create and Update persist the document together with its items.
type Repository interface {
	Create(ctx context.Context, f *ExitForm) error

	// GetByID loads a form with items, NotFound if absent.
	GetByID(ctx context.Context, formID id.ID) (*ExitForm, error)

	GetByReference(ctx context.Context, reference string) (*ExitForm, error)

	// Update persists the document and replaces its items, guarded by the
	// version column. ConcurrentModification when the version moved.
	Update(ctx context.Context, f *ExitForm) error

	List(ctx context.Context, filter Filter) (domain.ListResult[*ExitForm], error)

	// ListByPeriod returns forms with the given status whose date falls in
	// [start, end], items populated, ordered by date.
	ListByPeriod(ctx context.Context, start, end time.Time, status documents.Status) ([]*ExitForm, error)

	SetDeletionMark(ctx context.Context, formID id.ID, marked bool) error

	ExistsByReference(ctx context.Context, reference string) (bool, error)
}
