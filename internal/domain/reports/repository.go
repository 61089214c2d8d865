package reports

import (
	"context"
	"time"
)

// Repository runs the report queries. All methods are plain reads with no
// locking; a concurrent workflow commit may or may not be visible.
type Repository interface {
	// FormTotals aggregates completed entry/exit forms dated in [start, end].
	FormTotals(ctx context.Context, start, end time.Time) (*FormTotals, error)

	// MovementTotals sums ledger quantities by direction over [start, end].
	MovementTotals(ctx context.Context, start, end time.Time) (entryQty, exitQty int64, err error)

	// CategoryRollup groups ledger movements in [start, end] by product
	// category, ordered by category name.
	CategoryRollup(ctx context.Context, start, end time.Time) ([]*CategoryRow, error)

	// DailySeries buckets ledger movements in [start, end] per UTC day,
	// ordered by day ascending. Days without movements are absent.
	DailySeries(ctx context.Context, start, end time.Time) ([]*SeriesPoint, error)
}
