package reports

import (
	"context"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/types"
)

// Bucket is the series granularity. Only daily buckets are supported.
type Bucket string

const BucketDay Bucket = "day"

// Service answers report queries.
type Service struct {
	repo Repository
}

// NewService creates a reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperror.NewValidation("start and end are required")
	}
	if start.After(end) {
		return apperror.NewValidation("start must not be after end")
	}
	return nil
}

// Summary returns counts and totals of completed documents plus ledger
// quantity totals for [start, end].
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*Summary, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	totals, err := s.repo.FormTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = &FormTotals{
			EntriesTotal: types.ZeroMoney(),
			ExitsTotal:   types.ZeroMoney(),
		}
	}

	entryQty, exitQty, err := s.repo.MovementTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Start:         start,
		End:           end,
		EntriesCount:  totals.EntriesCount,
		ExitsCount:    totals.ExitsCount,
		EntriesTotal:  totals.EntriesTotal,
		ExitsTotal:    totals.ExitsTotal,
		EntryQuantity: entryQty,
		ExitQuantity:  exitQty,
	}, nil
}

// CategoryAnalysis returns the per-category movement rollup for [start, end].
func (s *Service) CategoryAnalysis(ctx context.Context, start, end time.Time) ([]*CategoryRow, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.repo.CategoryRollup(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*CategoryRow{}
	}
	return rows, nil
}

// MovementSeries returns per-day movement quantities for [start, end].
func (s *Service) MovementSeries(ctx context.Context, start, end time.Time, bucket Bucket) ([]*SeriesPoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if bucket != BucketDay {
		return nil, apperror.NewValidation("unsupported bucket").WithDetail("bucket", string(bucket))
	}

	points, err := s.repo.DailySeries(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []*SeriesPoint{}
	}
	return points, nil
}
