package duplicate

import (
	"context"
	"time"

	"stockhouse/internal/domain/documents"
)

// Repository retrieves candidate documents for matching.
type Repository interface {
	// FindCommittedByDay returns pending and completed documents of the
	// given kind whose business date falls on the same UTC calendar day,
	// with their lines populated. Drafts and cancelled documents are
	// excluded at the source.
	FindCommittedByDay(ctx context.Context, kind documents.Kind, day time.Time) ([]*Candidate, error)
}
