// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const categoriesTable = "categories"

var categoryColumns = []string{
	"id", "code", "name", "description", "deletion_mark", "version",
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	q := r.builder.Insert(categoriesTable).
		Columns(categoryColumns...).
		Values(c.ID, c.Code, c.Name, c.Description, c.DeletionMark, c.Version)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"id": categoryID}, categoryID.String())
}

func (r *CategoryRepo) GetByCode(ctx context.Context, code string) (*category.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code, "deletion_mark": false}, code)
}

func (r *CategoryRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*category.Category, error) {
	q := r.builder.Select(categoryColumns...).From(categoriesTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c category.Category
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("category", key)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	q := r.builder.Update(categoriesTable).
		Set("code", c.Code).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("deletion_mark", c.DeletionMark).
		Set("version", c.Version+1).
		Where(squirrel.Eq{"id": c.ID, "version": c.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("category", c.ID.String())
	}

	c.SetVersion(c.Version + 1)
	return nil
}

func (r *CategoryRepo) SetDeletionMark(ctx context.Context, categoryID id.ID, marked bool) error {
	q := r.builder.Update(categoriesTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": categoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", categoryID.String())
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*category.Category], error) {
	var result domain.ListResult[*category.Category]

	where := squirrel.And{}
	if !filter.IncludeDeleted {
		where = append(where, squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}
	if len(filter.IDs) > 0 {
		where = append(where, squirrel.Eq{"id": filter.IDs})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(categoriesTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &result.TotalCount, countSQL, countArgs...); err != nil {
		return result, fmt.Errorf("count categories: %w", err)
	}

	q := r.builder.Select(categoryColumns...).From(categoriesTable).Where(where).
		OrderBy(orderClause(filter, map[string]bool{"name": true, "code": true}, "name"))
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build select: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list categories: %w", err)
	}

	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

func (r *CategoryRepo) Exists(ctx context.Context, categoryID id.ID) (bool, error) {
	return exists(ctx, r.txm, r.builder, categoriesTable, squirrel.Eq{"id": categoryID, "deletion_mark": false})
}

func (r *CategoryRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.txm, r.builder, categoriesTable, squirrel.Eq{"code": code, "deletion_mark": false})
}
