package category

import (
	"context"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/tx"
	"stockhouse/internal/domain"
)

// Service provides business logic for the category catalog.
type Service struct {
	*domain.CatalogService[*Category]
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, c *Category) error {
	exists, err := s.repo.ExistsByCode(ctx, c.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("category with this code already exists").
			WithDetail("code", c.Code)
	}
	return nil
}
