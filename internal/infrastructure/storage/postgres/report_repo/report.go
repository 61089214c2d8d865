// Package report_repo runs the PostgreSQL aggregate queries behind the
// reporting service.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/reports"
	"stockhouse/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type formTotalsRow struct {
	Count int         `db:"count"`
	Total types.Money `db:"total"`
}

func (r *ReportRepo) FormTotals(ctx context.Context, start, end time.Time) (*reports.FormTotals, error) {
	totals := &reports.FormTotals{
		EntriesTotal: types.ZeroMoney(),
		ExitsTotal:   types.ZeroMoney(),
	}

	entries, err := r.formTotalsFor(ctx, "entry_forms", start, end)
	if err != nil {
		return nil, err
	}
	totals.EntriesCount = entries.Count
	totals.EntriesTotal = entries.Total

	exits, err := r.formTotalsFor(ctx, "exit_forms", start, end)
	if err != nil {
		return nil, err
	}
	totals.ExitsCount = exits.Count
	totals.ExitsTotal = exits.Total

	return totals, nil
}

func (r *ReportRepo) formTotalsFor(ctx context.Context, table string, start, end time.Time) (*formTotalsRow, error) {
	q := r.builder.Select("COUNT(*) AS count", "COALESCE(SUM(total), 0) AS total").
		From(table).
		Where(squirrel.Eq{"deletion_mark": false, "status": documents.StatusCompleted}).
		Where(squirrel.GtOrEq{"date": start}).
		Where(squirrel.LtOrEq{"date": end})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build totals: %w", err)
	}

	var row formTotalsRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", table, err)
	}
	return &row, nil
}

func (r *ReportRepo) MovementTotals(ctx context.Context, start, end time.Time) (int64, int64, error) {
	q := r.builder.Select(
		"COALESCE(SUM(CASE WHEN type = 'entry' THEN quantity ELSE 0 END), 0) AS entry_qty",
		"COALESCE(SUM(CASE WHEN type = 'exit' THEN quantity ELSE 0 END), 0) AS exit_qty").
		From("stock_movements").
		Where(squirrel.GtOrEq{"movement_date": start}).
		Where(squirrel.LtOrEq{"movement_date": end})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build totals: %w", err)
	}

	var row struct {
		EntryQty int64 `db:"entry_qty"`
		ExitQty  int64 `db:"exit_qty"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return 0, 0, fmt.Errorf("aggregate movements: %w", err)
	}
	return row.EntryQty, row.ExitQty, nil
}

type categoryRollupRow struct {
	CategoryID    id.ID       `db:"category_id"`
	CategoryName  string      `db:"category_name"`
	EntryQuantity int64       `db:"entry_quantity"`
	ExitQuantity  int64       `db:"exit_quantity"`
	EntryValue    types.Money `db:"entry_value"`
	ExitValue     types.Money `db:"exit_value"`
}

func (r *ReportRepo) CategoryRollup(ctx context.Context, start, end time.Time) ([]*reports.CategoryRow, error) {
	// Movements are valued at current catalog prices; forms keep their own
	// historical totals.
	q := r.builder.Select(
		"p.category_id AS category_id",
		"COALESCE(c.name, '') AS category_name",
		"COALESCE(SUM(CASE WHEN m.type = 'entry' THEN m.quantity ELSE 0 END), 0) AS entry_quantity",
		"COALESCE(SUM(CASE WHEN m.type = 'exit' THEN m.quantity ELSE 0 END), 0) AS exit_quantity",
		"COALESCE(SUM(CASE WHEN m.type = 'entry' THEN m.quantity * p.unit_price ELSE 0 END), 0) AS entry_value",
		"COALESCE(SUM(CASE WHEN m.type = 'exit' THEN m.quantity * p.unit_price ELSE 0 END), 0) AS exit_value").
		From("stock_movements m").
		Join("products p ON p.id = m.product_id").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(squirrel.GtOrEq{"m.movement_date": start}).
		Where(squirrel.LtOrEq{"m.movement_date": end}).
		GroupBy("p.category_id", "c.name").
		OrderBy("category_name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rollup: %w", err)
	}

	var rows []*categoryRollupRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("category rollup: %w", err)
	}

	out := make([]*reports.CategoryRow, len(rows))
	for i, row := range rows {
		out[i] = &reports.CategoryRow{
			CategoryID:    row.CategoryID,
			CategoryName:  row.CategoryName,
			EntryQuantity: row.EntryQuantity,
			ExitQuantity:  row.ExitQuantity,
			EntryValue:    row.EntryValue,
			ExitValue:     row.ExitValue,
		}
	}
	return out, nil
}

func (r *ReportRepo) DailySeries(ctx context.Context, start, end time.Time) ([]*reports.SeriesPoint, error) {
	q := r.builder.Select(
		"date_trunc('day', movement_date AT TIME ZONE 'UTC') AS day",
		"COALESCE(SUM(CASE WHEN type = 'entry' THEN quantity ELSE 0 END), 0) AS entry_quantity",
		"COALESCE(SUM(CASE WHEN type = 'exit' THEN quantity ELSE 0 END), 0) AS exit_quantity").
		From("stock_movements").
		Where(squirrel.GtOrEq{"movement_date": start}).
		Where(squirrel.LtOrEq{"movement_date": end}).
		GroupBy("day").
		OrderBy("day ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}

	var points []*reports.SeriesPoint
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &points, sql, args...); err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	return points, nil
}
