// Package entryform implements the goods receipt document and its workflow.
package entryform

import (
	"context"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/documents"
)

// EntryForm records goods received from a supplier. Validating it increases
// stock; items are mutable only while the form is a draft.
type EntryForm struct {
	entity.BaseDocument

	// Reference is unique among entry forms (ENT-YYYYMMDD-XXXX)
	Reference string `db:"reference" json:"reference"`

	// Date is the business date, never in the future
	Date time.Time `db:"date" json:"date"`

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	Status documents.Status `db:"status" json:"status"`

	// UserID is the user who created the form
	UserID id.ID `db:"user_id" json:"userId"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Total is the sum of line totals
	Total types.Money `db:"total" json:"total"`

	Items []*EntryItem `db:"-" json:"items"`
}

// EntryItem is one received product line.
type EntryItem struct {
	ID     id.ID `db:"id" json:"id"`
	FormID id.ID `db:"form_id" json:"formId"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity received, always positive
	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPrice is snapshotted at creation; later catalog price changes do
	// not rewrite the document
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// LineTotal = Quantity * UnitPrice
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Validate implements entity.Validatable.
func (f *EntryForm) Validate(_ context.Context) error {
	if f.Date.IsZero() {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if id.IsNil(f.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	if id.IsNil(f.UserID) {
		return apperror.NewValidation("user is required").WithDetail("field", "userId")
	}
	if !f.Status.Valid() {
		return apperror.NewValidation("invalid status").WithDetail("status", string(f.Status))
	}
	if len(f.Items) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i, item := range f.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("item product is required").WithDetail("item", i)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").WithDetail("item", i)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("item unit price cannot be negative").WithDetail("item", i)
		}
	}
	return nil
}

// ComputeTotal recalculates line totals and the document total.
func (f *EntryForm) ComputeTotal() {
	total := types.ZeroMoney()
	for _, item := range f.Items {
		item.LineTotal = types.MulQuantity(item.UnitPrice, item.Quantity)
		total = total.Add(item.LineTotal)
	}
	f.Total = total
}
