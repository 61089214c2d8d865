// Package exitform implements the goods dispatch document and its workflow.
package exitform

import (
	"context"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/documents"
)

// ExitForm records goods dispatched out of the warehouse. Validating it
// decreases stock and must refuse entirely if any line would drive a product
// below zero.
type ExitForm struct {
	entity.BaseDocument

	// Reference is unique among exit forms (EXT-YYYYMMDD-XXXX)
	Reference string `db:"reference" json:"reference"`

	// Date is the business date, never in the future
	Date time.Time `db:"date" json:"date"`

	// Destination is the free-form receiving party
	Destination string `db:"destination" json:"destination"`

	// Reason is the purpose of the dispatch
	Reason string `db:"reason" json:"reason,omitempty"`

	Status documents.Status `db:"status" json:"status"`

	// UserID is the user who created the form
	UserID id.ID `db:"user_id" json:"userId"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Total is the sum of line totals, valued at catalog prices captured at
	// creation
	Total types.Money `db:"total" json:"total"`

	Items []*ExitItem `db:"-" json:"items"`
}

// ExitItem is one dispatched product line. Exit forms carry no unit price
// snapshot; the line total is valued at the catalog price at creation time.
type ExitItem struct {
	ID     id.ID `db:"id" json:"id"`
	FormID id.ID `db:"form_id" json:"formId"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity dispatched, always positive
	Quantity int64 `db:"quantity" json:"quantity"`

	// LineTotal = Quantity * catalog price at creation
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Validate implements entity.Validatable.
func (f *ExitForm) Validate(_ context.Context) error {
	if f.Date.IsZero() {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if f.Destination == "" {
		return apperror.NewValidation("destination is required").WithDetail("field", "destination")
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
	}
	return nil
}

// ComputeTotal recalculates the document total from line totals.
func (f *ExitForm) ComputeTotal() {
	total := types.ZeroMoney()
	for _, item := range f.Items {
		total = total.Add(item.LineTotal)
	}
	f.Total = total
}
