// Package duplicate implements advisory duplicate detection for documents.
// Results are hints for the operator; nothing here ever blocks a workflow.
package duplicate

import (
	"time"

	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/documents"
)

// Line is a product/quantity pair used for overlap matching.
type Line struct {
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Candidate is a potential duplicate of the document being checked.
type Candidate struct {
	DocumentID id.ID            `json:"documentId"`
	Kind       documents.Kind   `json:"kind"`
	Reference  string           `json:"reference"`
	Date       time.Time        `json:"date"`
	Status     documents.Status `json:"status"`

	// SupplierID is set for entry forms
	SupplierID id.ID `json:"supplierId,omitempty"`

	// Destination is set for exit forms
	Destination string `json:"destination,omitempty"`

	Total types.Money `json:"total"`
	Lines []Line      `json:"lines,omitempty"`
}

// Query describes the document being checked for duplicates.
type Query struct {
	// SupplierID is the counterparty for entry forms
	SupplierID id.ID

	// Destination is the counterparty text for exit forms
	Destination string

	// Date is the business date; candidates come from the same calendar day
	Date time.Time

	// Lines enables product/quantity overlap matching when present
	Lines []Line

	// ExcludeID skips a document (checking an already-saved draft)
	ExcludeID id.ID
}

// sameCounterparty reports whether the candidate has the query's counterparty.
func (q Query) sameCounterparty(c *Candidate) bool {
	if c.Kind == documents.KindEntry {
		return !id.IsNil(q.SupplierID) && c.SupplierID == q.SupplierID
	}
	return q.Destination != "" && c.Destination == q.Destination
}

// lineOverlap reports whether any query line matches a candidate line on
// both product and quantity.
func (q Query) lineOverlap(c *Candidate) bool {
	if len(q.Lines) == 0 || len(c.Lines) == 0 {
		return false
	}
	for _, ql := range q.Lines {
		for _, cl := range c.Lines {
			if ql.ProductID == cl.ProductID && ql.Quantity == cl.Quantity {
				return true
			}
		}
	}
	return false
}
