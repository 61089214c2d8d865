package dto

import (
	"stockhouse/internal/core/types"
)

// FormItemRequest is one document line.
type FormItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`

	// UnitPrice is entry-form only; nil snapshots the catalog price
	UnitPrice *types.Money `json:"unitPrice,omitempty"`
}

// CreateEntryFormRequest creates a goods receipt draft.
type CreateEntryFormRequest struct {
	Reference  string            `json:"reference"`
	Date       string            `json:"date" binding:"required"`
	SupplierID string            `json:"supplierId" binding:"required"`
	Notes      string            `json:"notes"`
	Items      []FormItemRequest `json:"items" binding:"required,min=1"`
}

// UpdateEntryFormRequest edits a draft.
type UpdateEntryFormRequest struct {
	Date       string            `json:"date" binding:"required"`
	SupplierID string            `json:"supplierId" binding:"required"`
	Notes      string            `json:"notes"`
	Items      []FormItemRequest `json:"items" binding:"required,min=1"`
}

// CreateExitFormRequest creates a goods dispatch draft.
type CreateExitFormRequest struct {
	Reference   string            `json:"reference"`
	Date        string            `json:"date" binding:"required"`
	Destination string            `json:"destination" binding:"required"`
	Reason      string            `json:"reason"`
	Notes       string            `json:"notes"`
	Items       []FormItemRequest `json:"items" binding:"required,min=1"`
}

// UpdateExitFormRequest edits a draft.
type UpdateExitFormRequest struct {
	Date        string            `json:"date" binding:"required"`
	Destination string            `json:"destination" binding:"required"`
	Reason      string            `json:"reason"`
	Notes       string            `json:"notes"`
	Items       []FormItemRequest `json:"items" binding:"required,min=1"`
}

// TransitionRequest carries the optional operator reason for validate/cancel.
type TransitionRequest struct {
	Reason string `json:"reason"`
}

// FormListQuery narrows document lists.
type FormListQuery struct {
	ListQuery

	Status      string `form:"status"`
	SupplierID  string `form:"supplierId"`
	Destination string `form:"destination"`
	DateFrom    string `form:"dateFrom"`
	DateTo      string `form:"dateTo"`
}

// DuplicateCheckRequest describes a prospective document to match against
// committed ones.
type DuplicateCheckRequest struct {
	SupplierID  string            `json:"supplierId"`
	Destination string            `json:"destination"`
	Date        string            `json:"date" binding:"required"`
	ExcludeID   string            `json:"excludeId"`
	Items       []FormItemRequest `json:"items"`
}
