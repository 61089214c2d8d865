package product

import (
	"context"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/tx"
	"stockhouse/internal/domain"
)

// Service provides business logic for the product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkReferenceUnique)

	return svc
}

func (s *Service) checkReferenceUnique(ctx context.Context, p *Product) error {
	exists, err := s.repo.ExistsByCode(ctx, p.Reference)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("product with this reference already exists").
			WithDetail("reference", p.Reference)
	}
	return nil
}

// GetByIDs loads several products at once.
func (s *Service) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// ListLowStock returns products at or below their alert threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.ListLowStock(ctx)
}
