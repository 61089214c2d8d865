// Package category manages the product category catalog.
package category

import (
	"context"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
)

// Category groups products for reporting.
type Category struct {
	entity.BaseCatalog

	// Code is a short unique mnemonic
	Code string `db:"code" json:"code"`

	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// New creates a category with a generated ID.
func New(code, name string) *Category {
	return &Category{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(_ context.Context) error {
	if c.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}
