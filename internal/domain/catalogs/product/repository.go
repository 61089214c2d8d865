package product

import (
	"context"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
)

// Repository is the persistence contract for products.
// Quantity mutation is deliberately absent; the stock service owns it.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetByIDs loads several products at once (workflow item resolution).
	// Missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)

	// ListLowStock returns products at or below their alert threshold.
	ListLowStock(ctx context.Context) ([]*Product, error)
}
