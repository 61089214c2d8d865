package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/catalogs/supplier"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const suppliersTable = "suppliers"

var supplierColumns = []string{
	"id", "code", "name", "email", "phone", "address", "deletion_mark", "version",
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Insert(suppliersTable).
		Columns(supplierColumns...).
		Values(s.ID, s.Code, s.Name, s.Email, s.Phone, s.Address, s.DeletionMark, s.Version)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	return r.getOne(ctx, squirrel.Eq{"id": supplierID}, supplierID.String())
}

func (r *SupplierRepo) GetByCode(ctx context.Context, code string) (*supplier.Supplier, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code, "deletion_mark": false}, code)
}

func (r *SupplierRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).From(suppliersTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var s supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", key)
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Update(suppliersTable).
		Set("code", s.Code).
		Set("name", s.Name).
		Set("email", s.Email).
		Set("phone", s.Phone).
		Set("address", s.Address).
		Set("deletion_mark", s.DeletionMark).
		Set("version", s.Version+1).
		Where(squirrel.Eq{"id": s.ID, "version": s.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("supplier", s.ID.String())
	}

	s.SetVersion(s.Version + 1)
	return nil
}

func (r *SupplierRepo) SetDeletionMark(ctx context.Context, supplierID id.ID, marked bool) error {
	q := r.builder.Update(suppliersTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID.String())
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*supplier.Supplier], error) {
	var result domain.ListResult[*supplier.Supplier]

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

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(suppliersTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &result.TotalCount, countSQL, countArgs...); err != nil {
		return result, fmt.Errorf("count suppliers: %w", err)
	}

	q := r.builder.Select(supplierColumns...).From(suppliersTable).Where(where).
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
		return result, fmt.Errorf("list suppliers: %w", err)
	}

	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

func (r *SupplierRepo) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	return exists(ctx, r.txm, r.builder, suppliersTable, squirrel.Eq{"id": supplierID, "deletion_mark": false})
}

func (r *SupplierRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.txm, r.builder, suppliersTable, squirrel.Eq{"code": code, "deletion_mark": false})
}
