package stock

import (
	"context"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/catalogs/product"
)

// Repository is the persistence contract for stock state and the ledger.
type Repository interface {
	// AdjustQuantity applies a signed delta to the product quantity with a
	// conditional update that refuses a negative result. Returns the product
	// with its new quantity, InsufficientStock when the delta would drive
	// the quantity below zero, NotFound for an unknown product.
	AdjustQuantity(ctx context.Context, productID id.ID, delta int64) (*product.Product, error)

	// AppendMovement inserts one immutable ledger row.
	AppendMovement(ctx context.Context, m *StockMovement) error

	// MovementsByProduct returns ledger rows for a product, newest first.
	MovementsByProduct(ctx context.Context, productID id.ID) ([]*StockMovement, error)

	// SignedTotalByProduct sums the signed effects of all ledger rows for a
	// product (reconciliation checks).
	SignedTotalByProduct(ctx context.Context, productID id.ID) (int64, error)
}
