package supplier

import (
	"stockhouse/internal/domain"
)

// Repository is the persistence contract for suppliers.
type Repository = domain.CatalogRepository[*Supplier]
