// Package duplicate_repo retrieves duplicate-detection candidates from
// PostgreSQL. Retrieval is scoped to one UTC calendar day and to committed
// documents; the detector narrows further in memory.
package duplicate_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/infrastructure/storage/postgres"
)

// DuplicateRepo implements duplicate.Repository.
type DuplicateRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewDuplicateRepo creates a duplicate candidate repository.
func NewDuplicateRepo(txm *postgres.TxManager) *DuplicateRepo {
	return &DuplicateRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type entryCandidateRow struct {
	ID         id.ID            `db:"id"`
	Reference  string           `db:"reference"`
	Date       time.Time        `db:"date"`
	Status     documents.Status `db:"status"`
	SupplierID id.ID            `db:"supplier_id"`
	Total      types.Money      `db:"total"`
}

type exitCandidateRow struct {
	ID          id.ID            `db:"id"`
	Reference   string           `db:"reference"`
	Date        time.Time        `db:"date"`
	Status      documents.Status `db:"status"`
	Destination string           `db:"destination"`
	Total       types.Money      `db:"total"`
}

type lineRow struct {
	FormID    id.ID `db:"form_id"`
	ProductID id.ID `db:"product_id"`
	Quantity  int64 `db:"quantity"`
}

// FindCommittedByDay returns pending and completed documents dated on the
// same UTC calendar day as day, with lines populated.
func (r *DuplicateRepo) FindCommittedByDay(ctx context.Context, kind documents.Kind, day time.Time) ([]*duplicate.Candidate, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	if kind == documents.KindEntry {
		return r.findEntries(ctx, dayStart, dayEnd)
	}
	return r.findExits(ctx, dayStart, dayEnd)
}

func (r *DuplicateRepo) findEntries(ctx context.Context, dayStart, dayEnd time.Time) ([]*duplicate.Candidate, error) {
	q := r.builder.Select("id", "reference", "date", "status", "supplier_id", "total").
		From("entry_forms").
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"status": []documents.Status{documents.StatusPending, documents.StatusCompleted}}).
		Where(squirrel.GtOrEq{"date": dayStart}).
		Where(squirrel.Lt{"date": dayEnd})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []*entryCandidateRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("find entry candidates: %w", err)
	}

	candidates := make([]*duplicate.Candidate, 0, len(rows))
	ids := make([]id.ID, 0, len(rows))
	byID := make(map[id.ID]*duplicate.Candidate, len(rows))
	for _, row := range rows {
		c := &duplicate.Candidate{
			DocumentID: row.ID,
			Kind:       documents.KindEntry,
			Reference:  row.Reference,
			Date:       row.Date,
			Status:     row.Status,
			SupplierID: row.SupplierID,
			Total:      row.Total,
		}
		candidates = append(candidates, c)
		ids = append(ids, row.ID)
		byID[row.ID] = c
	}

	if err := r.loadLines(ctx, "entry_items", ids, byID); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *DuplicateRepo) findExits(ctx context.Context, dayStart, dayEnd time.Time) ([]*duplicate.Candidate, error) {
	q := r.builder.Select("id", "reference", "date", "status", "destination", "total").
		From("exit_forms").
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"status": []documents.Status{documents.StatusPending, documents.StatusCompleted}}).
		Where(squirrel.GtOrEq{"date": dayStart}).
		Where(squirrel.Lt{"date": dayEnd})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []*exitCandidateRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("find exit candidates: %w", err)
	}

	candidates := make([]*duplicate.Candidate, 0, len(rows))
	ids := make([]id.ID, 0, len(rows))
	byID := make(map[id.ID]*duplicate.Candidate, len(rows))
	for _, row := range rows {
		c := &duplicate.Candidate{
			DocumentID:  row.ID,
			Kind:        documents.KindExit,
			Reference:   row.Reference,
			Date:        row.Date,
			Status:      row.Status,
			Destination: row.Destination,
			Total:       row.Total,
		}
		candidates = append(candidates, c)
		ids = append(ids, row.ID)
		byID[row.ID] = c
	}

	if err := r.loadLines(ctx, "exit_items", ids, byID); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *DuplicateRepo) loadLines(ctx context.Context, table string, ids []id.ID, byID map[id.ID]*duplicate.Candidate) error {
	if len(ids) == 0 {
		return nil
	}

	q := r.builder.Select("form_id", "product_id", "quantity").
		From(table).
		Where(squirrel.Eq{"form_id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build select lines: %w", err)
	}

	var lines []*lineRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return fmt.Errorf("load candidate lines: %w", err)
	}

	for _, line := range lines {
		if c, ok := byID[line.FormID]; ok {
			c.Lines = append(c.Lines, duplicate.Line{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}
	}
	return nil
}
