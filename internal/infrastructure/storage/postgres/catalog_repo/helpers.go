package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/domain"
	"stockhouse/internal/infrastructure/storage/postgres"
)

// orderClause builds an ORDER BY from a whitelisted column set.
// Unknown columns fall back to the default.
func orderClause(filter domain.ListFilter, allowed map[string]bool, def string) string {
	col := filter.OrderBy
	if !allowed[col] {
		col = def
	}
	if filter.OrderDesc {
		return col + " DESC"
	}
	return col + " ASC"
}

// exists runs a SELECT EXISTS query for the given predicate.
func exists(ctx context.Context, txm *postgres.TxManager, builder squirrel.StatementBuilderType, table string, where squirrel.Eq) (bool, error) {
	inner := builder.Select("1").From(table).Where(where)
	innerSQL, args, err := inner.ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var found bool
	sql := "SELECT EXISTS (" + innerSQL + ")"
	if err := pgxscan.Get(ctx, txm.GetQuerier(ctx), &found, sql, args...); err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return found, nil
}
