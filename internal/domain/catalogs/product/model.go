// Package product manages the product catalog.
//
// The quantity field is authoritative current stock. It is read-only through
// the catalog surface; only the stock service mutates it, inside workflow
// transactions.
package product

import (
	"context"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
)

// Product is a stocked item.
type Product struct {
	entity.BaseCatalog

	// Reference is the unique product code
	Reference string `db:"reference" json:"reference"`

	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	CategoryID id.ID `db:"category_id" json:"categoryId"`

	// UnitPrice is the current catalog price
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Quantity is current stock on hand, never negative
	Quantity int64 `db:"quantity" json:"quantity"`

	// MinQuantity is the low-stock alert threshold
	MinQuantity int64 `db:"min_quantity" json:"minQuantity"`
}

// New creates a product with a generated ID.
func New(reference, name string, categoryID id.ID, unitPrice types.Money) *Product {
	return &Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   reference,
		Name:        name,
		CategoryID:  categoryID,
		UnitPrice:   unitPrice,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(_ context.Context) error {
	if p.Reference == "" {
		return apperror.NewValidation("reference is required").WithDetail("field", "reference")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("category is required").WithDetail("field", "categoryId")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unitPrice")
	}
	if p.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	if p.MinQuantity < 0 {
		return apperror.NewValidation("minimum quantity cannot be negative").WithDetail("field", "minQuantity")
	}
	return nil
}

// IsLowStock reports whether current stock is at or below the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.MinQuantity > 0 && p.Quantity <= p.MinQuantity
}
