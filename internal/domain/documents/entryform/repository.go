package entryform

import (
	"context"
	"time"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/documents"
)

// Filter narrows entry form lists.
type Filter struct {
	domain.ListFilter

	Status     documents.Status
	SupplierID id.ID
	DateFrom   time.Time
	DateTo     time.Time
}

// Repository is the persistence contract for entry forms.
// Create and Update persist the document together with its items.
type Repository interface {
	Create(ctx context.Context, f *EntryForm) error

	// GetByID loads a form with items, NotFound if absent.
	GetByID(ctx context.Context, formID id.ID) (*EntryForm, error)

	GetByReference(ctx context.Context, reference string) (*EntryForm, error)

	// Update persists the document and replaces its items, guarded by the
	// version column. ConcurrentModification when the version moved.
	Update(ctx context.Context, f *EntryForm) error

	List(ctx context.Context, filter Filter) (domain.ListResult[*EntryForm], error)

	// ListByPeriod returns forms with the given status whose date falls in
	// [start, end], items populated, ordered by date.
	ListByPeriod(ctx context.Context, start, end time.Time, status documents.Status) ([]*EntryForm, error)

	SetDeletionMark(ctx context.Context, formID id.ID, marked bool) error

	ExistsByReference(ctx context.Context, reference string) (bool, error)
}
