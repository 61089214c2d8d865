package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = []string{
	"id", "reference", "name", "description", "category_id",
	"unit_price", "quantity", "min_quantity", "deletion_mark", "version",
}

// ProductRepo implements product.Repository. The quantity column is only
// written here on Create; stock adjustments go through the stock repository.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(p.ID, p.Reference, p.Name, p.Description, p.CategoryID,
			p.UnitPrice, p.Quantity, p.MinQuantity, p.DeletionMark, p.Version)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": productID}, productID.String())
}

// GetByCode looks up by the product reference.
func (r *ProductRepo) GetByCode(ctx context.Context, reference string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference, "deletion_mark": false}, reference)
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetByIDs loads a batch of products keyed by id. Missing ids are simply
// absent from the map.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	if len(ids) == 0 {
		return map[id.ID]*product.Product{}, nil
	}

	q := r.builder.Select(productColumns...).From(productsTable).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	byID := make(map[id.ID]*product.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	// Quantity is deliberately absent: stock levels change only through
	// the stock repository's conditional update.
	q := r.builder.Update(productsTable).
		Set("reference", p.Reference).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("category_id", p.CategoryID).
		Set("unit_price", p.UnitPrice).
		Set("min_quantity", p.MinQuantity).
		Set("deletion_mark", p.DeletionMark).
		Set("version", p.Version+1).
		Where(squirrel.Eq{"id": p.ID, "version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("product", p.ID.String())
	}

	p.SetVersion(p.Version + 1)
	return nil
}

func (r *ProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	q := r.builder.Update(productsTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	var result domain.ListResult[*product.Product]

	where := squirrel.And{}
	if !filter.IncludeDeleted {
		where = append(where, squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"reference": pattern},
		})
	}
	if len(filter.IDs) > 0 {
		where = append(where, squirrel.Eq{"id": filter.IDs})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(productsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &result.TotalCount, countSQL, countArgs...); err != nil {
		return result, fmt.Errorf("count products: %w", err)
	}

	q := r.builder.Select(productColumns...).From(productsTable).Where(where).
		OrderBy(orderClause(filter, map[string]bool{"name": true, "reference": true, "quantity": true}, "name"))
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
		return result, fmt.Errorf("list products: %w", err)
	}

	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

// ListLowStock returns active products at or below their alert threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where("min_quantity > 0 AND quantity <= min_quantity").
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

func (r *ProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	return exists(ctx, r.txm, r.builder, productsTable, squirrel.Eq{"id": productID, "deletion_mark": false})
}

// ExistsByCode reports whether an active product uses the reference.
func (r *ProductRepo) ExistsByCode(ctx context.Context, reference string) (bool, error) {
	return exists(ctx, r.txm, r.builder, productsTable, squirrel.Eq{"reference": reference, "deletion_mark": false})
}
