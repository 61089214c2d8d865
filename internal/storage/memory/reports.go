package memory

import (
	"context"
	"sort"
	"time"

	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/reports"
	"stockhouse/internal/domain/stock"
)

// ReportRepo is the in-memory reports repository.
type ReportRepo struct {
	store *Store
}

// NewReportRepo creates a reports repository over the store.
func NewReportRepo(store *Store) *ReportRepo {
	return &ReportRepo{store: store}
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (r *ReportRepo) FormTotals(_ context.Context, start, end time.Time) (*reports.FormTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totals := &reports.FormTotals{
		EntriesTotal: types.ZeroMoney(),
		ExitsTotal:   types.ZeroMoney(),
	}
	for _, f := range r.store.entryForms {
		if f.DeletionMark || f.Status != documents.StatusCompleted || !inRange(f.Date, start, end) {
			continue
		}
		totals.EntriesCount++
		totals.EntriesTotal = totals.EntriesTotal.Add(f.Total)
	}
	for _, f := range r.store.exitForms {
		if f.DeletionMark || f.Status != documents.StatusCompleted || !inRange(f.Date, start, end) {
			continue
		}
		totals.ExitsCount++
		totals.ExitsTotal = totals.ExitsTotal.Add(f.Total)
	}
	return totals, nil
}

func (r *ReportRepo) MovementTotals(_ context.Context, start, end time.Time) (int64, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var entryQty, exitQty int64
	for _, m := range r.store.movements {
		if !inRange(m.MovementDate, start, end) {
			continue
		}
		if m.Type == stock.MovementEntry {
			entryQty += m.Quantity
		} else {
			exitQty += m.Quantity
		}
	}
	return entryQty, exitQty, nil
}

func (r *ReportRepo) CategoryRollup(_ context.Context, start, end time.Time) ([]*reports.CategoryRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byCategory := make(map[id.ID]*reports.CategoryRow)
	for _, m := range r.store.movements {
		if !inRange(m.MovementDate, start, end) {
			continue
		}
		p, ok := r.store.products[m.ProductID]
		if !ok {
			continue
		}

		row, ok := byCategory[p.CategoryID]
		if !ok {
			row = &reports.CategoryRow{
				CategoryID: p.CategoryID,
				EntryValue: types.ZeroMoney(),
				ExitValue:  types.ZeroMoney(),
			}
			if cat, ok := r.store.categories[p.CategoryID]; ok {
				row.CategoryName = cat.Name
			}
			byCategory[p.CategoryID] = row
		}

		value := types.MulQuantity(p.UnitPrice, m.Quantity)
		if m.Type == stock.MovementEntry {
			row.EntryQuantity += m.Quantity
			row.EntryValue = row.EntryValue.Add(value)
		} else {
			row.ExitQuantity += m.Quantity
			row.ExitValue = row.ExitValue.Add(value)
		}
	}

	rows := make([]*reports.CategoryRow, 0, len(byCategory))
	for _, row := range byCategory {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CategoryName < rows[j].CategoryName })
	return rows, nil
}

func (r *ReportRepo) DailySeries(_ context.Context, start, end time.Time) ([]*reports.SeriesPoint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byDay := make(map[time.Time]*reports.SeriesPoint)
	for _, m := range r.store.movements {
		if !inRange(m.MovementDate, start, end) {
			continue
		}
		day := m.MovementDate.UTC().Truncate(24 * time.Hour)
		point, ok := byDay[day]
		if !ok {
			point = &reports.SeriesPoint{Day: day}
			byDay[day] = point
		}
		if m.Type == stock.MovementEntry {
			point.EntryQuantity += m.Quantity
		} else {
			point.ExitQuantity += m.Quantity
		}
	}

	points := make([]*reports.SeriesPoint, 0, len(byDay))
	for _, point := range byDay {
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })
	return points, nil
}
