package memory

import (
	"context"
	"sort"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/stock"
)

// StockRepo is the in-memory stock repository.
type StockRepo struct {
	store *Store
}

// NewStockRepo creates a stock repository over the store.
func NewStockRepo(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

// AdjustQuantity applies the delta under the store lock, refusing negative
// results, matching the conditional-update semantics of the SQL version.
func (r *StockRepo) AdjustQuantity(_ context.Context, productID id.ID, delta int64) (*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID]
	if !ok || p.DeletionMark {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	if p.Quantity+delta < 0 {
		return nil, apperror.NewInsufficientStock(productID.String(), -delta, p.Quantity)
	}

	p.Quantity += delta
	p.Version++
	return cloneProduct(p), nil
}

func (r *StockRepo) AppendMovement(_ context.Context, m *stock.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.movements = append(r.store.movements, cloneMovement(m))
	return nil
}

func (r *StockRepo) MovementsByProduct(_ context.Context, productID id.ID) ([]*stock.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*stock.StockMovement
	for _, m := range r.store.movements {
		if m.ProductID == productID {
			result = append(result, cloneMovement(m))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *StockRepo) SignedTotalByProduct(_ context.Context, productID id.ID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for _, m := range r.store.movements {
		if m.ProductID == productID {
			total += m.SignedEffect()
		}
	}
	return total, nil
}
