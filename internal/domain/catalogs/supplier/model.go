// Package supplier manages the supplier catalog (counterparties of entry forms).
package supplier

import (
	"context"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
)

// Supplier is the counterparty goods are received from.
type Supplier struct {
	entity.BaseCatalog

	// Code is a short unique mnemonic
	Code string `db:"code" json:"code"`

	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`

	// Address is free-form contact info
	Address string `db:"address" json:"address,omitempty"`
}

// New creates a supplier with a generated ID.
func New(code, name string) *Supplier {
	return &Supplier{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(_ context.Context) error {
	if s.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if s.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}
