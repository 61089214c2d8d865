package stock

import (
	"context"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/pkg/logger"
)

// Service mutates product stock and appends ledger rows.
//
// It deliberately has no transaction manager: callers (the document
// workflows) own the transaction, and every method here participates in it
// through the context. The service never writes document history.
type Service struct {
	repo Repository
}

// NewService creates a stock service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Adjust applies a signed delta to a product's quantity. The repository
// performs the check-and-update atomically, so concurrent adjustments cannot
// drive stock negative.
func (s *Service) Adjust(ctx context.Context, productID id.ID, delta int64) (*product.Product, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if delta == 0 {
		return nil, apperror.NewValidation("delta must be non-zero")
	}

	p, err := s.repo.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "stock adjusted",
		"product_id", productID,
		"delta", delta,
		"quantity", p.Quantity,
	)
	return p, nil
}

// Record appends one immutable ledger row. Required-field validation only;
// no stock is touched here.
func (s *Service) Record(ctx context.Context, in MovementInput) (*StockMovement, error) {
	if id.IsNil(in.ProductID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if !in.Type.Valid() {
		return nil, apperror.NewValidation("movement type must be entry or exit").
			WithDetail("type", string(in.Type))
	}
	if in.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", in.Quantity)
	}
	if in.Reason == "" {
		return nil, apperror.NewValidation("reason is required")
	}
	if in.MovementDate.IsZero() {
		return nil, apperror.NewValidation("movement date is required")
	}
	if id.IsNil(in.UserID) {
		return nil, apperror.NewValidation("user id is required")
	}

	m := &StockMovement{
		ID:           id.New(),
		ProductID:    in.ProductID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		MovementDate: in.MovementDate,
		UserID:       in.UserID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.AppendMovement(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MovementsByProduct returns ledger rows for a product, newest first.
func (s *Service) MovementsByProduct(ctx context.Context, productID id.ID) ([]*StockMovement, error) {
	return s.repo.MovementsByProduct(ctx, productID)
}

// SignedTotal sums the signed ledger effects for a product.
func (s *Service) SignedTotal(ctx context.Context, productID id.ID) (int64, error) {
	return s.repo.SignedTotalByProduct(ctx, productID)
}
