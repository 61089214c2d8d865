package category

import (
	"stockhouse/internal/domain"
)

// Repository is the persistence contract for categories.
type Repository = domain.CatalogRepository[*Category]
