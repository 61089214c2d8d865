package memory

import (
	"context"
	"time"

	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/duplicate"
)

// DuplicateRepo serves duplicate detection over both form stores.
type DuplicateRepo struct {
	store *Store
}

// NewDuplicateRepo creates a duplicate candidate source over the store.
func NewDuplicateRepo(store *Store) *DuplicateRepo {
	return &DuplicateRepo{store: store}
}

func (r *DuplicateRepo) FindCommittedByDay(_ context.Context, kind documents.Kind, day time.Time) ([]*duplicate.Candidate, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*duplicate.Candidate

	switch kind {
	case documents.KindEntry:
		for _, f := range r.store.entryForms {
			if f.DeletionMark || !f.Status.IsCommitted() {
				continue
			}
			d := f.Date.UTC()
			if d.Before(dayStart) || !d.Before(dayEnd) {
				continue
			}
			c := &duplicate.Candidate{
				DocumentID: f.ID,
				Kind:       documents.KindEntry,
				Reference:  f.Reference,
				Date:       f.Date,
				Status:     f.Status,
				SupplierID: f.SupplierID,
				Total:      f.Total,
			}
			for _, item := range f.Items {
				c.Lines = append(c.Lines, duplicate.Line{ProductID: item.ProductID, Quantity: item.Quantity})
			}
			result = append(result, c)
		}
	case documents.KindExit:
		for _, f := range r.store.exitForms {
			if f.DeletionMark || !f.Status.IsCommitted() {
				continue
			}
			d := f.Date.UTC()
			if d.Before(dayStart) || !d.Before(dayEnd) {
				continue
			}
			c := &duplicate.Candidate{
				DocumentID:  f.ID,
				Kind:        documents.KindExit,
				Reference:   f.Reference,
				Date:        f.Date,
				Status:      f.Status,
				Destination: f.Destination,
				Total:       f.Total,
			}
			for _, item := range f.Items {
				c.Lines = append(c.Lines, duplicate.Line{ProductID: item.ProductID, Quantity: item.Quantity})
			}
			result = append(result, c)
		}
	}

	return result, nil
}
