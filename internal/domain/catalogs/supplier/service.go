package supplier

import (
	"context"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/tx"
	"stockhouse/internal/domain"
)

// Service provides business logic for the supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, sp *Supplier) error {
	exists, err := s.repo.ExistsByCode(ctx, sp.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("supplier with this code already exists").
			WithDetail("code", sp.Code)
	}
	return nil
}
