// Package history_repo provides the PostgreSQL history repository. The
// table is append-only; no update or delete statements exist here.
package history_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const historiesTable = "document_histories"

var historyColumns = []string{
	"id", "document_kind", "document_id", "user_id", "field",
	"old_value", "new_value", "reason",
	"snapshot", "snapshot_zstd", "compression_algo", "created_at",
}

// HistoryRepo implements history.Repository.
type HistoryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewHistoryRepo creates a history repository.
func NewHistoryRepo(txm *postgres.TxManager) *HistoryRepo {
	return &HistoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *HistoryRepo) Append(ctx context.Context, e *history.HistoryEntry) error {
	q := r.builder.Insert(historiesTable).
		Columns(historyColumns...).
		Values(e.ID, e.DocumentKind, e.DocumentID, e.UserID, e.Field,
			e.OldValue, e.NewValue, e.Reason,
			e.Snapshot, e.SnapshotZstd, e.CompressionAlgo, e.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByDocument(ctx context.Context, kind documents.Kind, documentID id.ID) ([]*history.HistoryEntry, error) {
	q := r.builder.Select(historyColumns...).From(historiesTable).
		Where(squirrel.Eq{"document_kind": kind, "document_id": documentID}).
		OrderBy("created_at DESC", "id DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var entries []*history.HistoryEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
