// Package register_repo provides the PostgreSQL stock register: the
// authoritative product quantity plus the immutable movement ledger.
package register_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/stock"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const (
	productsTable       = "products"
	stockMovementsTable = "stock_movements"
)

var productColumns = []string{
	"id", "reference", "name", "description", "category_id",
	"unit_price", "quantity", "min_quantity", "deletion_mark", "version",
}

var movementColumns = []string{
	"id", "product_id", "type", "quantity", "reason",
	"movement_date", "user_id", "created_at",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AdjustQuantity applies a signed delta with a single conditional UPDATE.
// The quantity + delta >= 0 predicate makes the check-and-set atomic under
// concurrent validations without row locks in application code.
func (r *StockRepo) AdjustQuantity(ctx context.Context, productID id.ID, delta int64) (*product.Product, error) {
	q := r.builder.Update(productsTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID, "deletion_mark": false}).
		Where(squirrel.Expr("quantity + ? >= 0", delta)).
		Suffix("RETURNING " + strings.Join(productColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build adjust: %w", err)
	}

	var p product.Product
	err = pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...)
	if err == nil {
		return &p, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}

	// No row updated: distinguish a missing product from insufficient stock.
	available, lookupErr := r.currentQuantity(ctx, productID)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return nil, apperror.NewInsufficientStock(productID.String(), -delta, available)
}

func (r *StockRepo) currentQuantity(ctx context.Context, productID id.ID) (int64, error) {
	q := r.builder.Select("quantity").From(productsTable).
		Where(squirrel.Eq{"id": productID, "deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}

	var quantity int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &quantity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return 0, apperror.NewNotFound("product", productID.String())
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}
	return quantity, nil
}

// AppendMovement inserts one ledger row. The table has no UPDATE or DELETE
// path anywhere in the codebase.
func (r *StockRepo) AppendMovement(ctx context.Context, m *stock.StockMovement) error {
	q := r.builder.Insert(stockMovementsTable).
		Columns(movementColumns...).
		Values(m.ID, m.ProductID, m.Type, m.Quantity, m.Reason,
			m.MovementDate, m.UserID, m.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *StockRepo) MovementsByProduct(ctx context.Context, productID id.ID) ([]*stock.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var movements []*stock.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

func (r *StockRepo) SignedTotalByProduct(ctx context.Context, productID id.ID) (int64, error) {
	q := r.builder.Select(
		"COALESCE(SUM(CASE WHEN type = 'entry' THEN quantity ELSE -quantity END), 0)").
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &total, sql, args...); err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return total, nil
}
