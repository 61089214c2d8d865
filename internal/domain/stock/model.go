// Package stock owns the authoritative product quantity and the immutable
// stock movement ledger. It always runs inside the caller's transaction and
// never opens one of its own.
package stock

import (
	"time"

	"stockhouse/internal/core/id"
)

// MovementType is the direction of a ledger row.
type MovementType string

const (
	// MovementEntry increases stock.
	MovementEntry MovementType = "entry"

	// MovementExit decreases stock.
	MovementExit MovementType = "exit"
)

// Valid reports whether the movement type is known.
func (t MovementType) Valid() bool {
	return t == MovementEntry || t == MovementExit
}

// Sign returns +1 for entries and -1 for exits.
func (t MovementType) Sign() int64 {
	if t == MovementExit {
		return -1
	}
	return 1
}

// StockMovement is one immutable ledger row. Quantity is a positive
// magnitude; the direction lives in Type so rows read naturally.
type StockMovement struct {
	ID        id.ID        `db:"id" json:"id"`
	ProductID id.ID        `db:"product_id" json:"productId"`
	Type      MovementType `db:"type" json:"type"`

	// Quantity is the magnitude of the change, always positive
	Quantity int64 `db:"quantity" json:"quantity"`

	// Reason is human-readable provenance ("entry form validated", ...)
	Reason string `db:"reason" json:"reason"`

	// MovementDate is the business date of the originating document
	MovementDate time.Time `db:"movement_date" json:"movementDate"`

	// UserID is the user whose action produced the row
	UserID id.ID `db:"user_id" json:"userId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedEffect returns the signed stock change of this row.
func (m *StockMovement) SignedEffect() int64 {
	return m.Type.Sign() * m.Quantity
}

// MovementInput describes a ledger append.
type MovementInput struct {
	ProductID    id.ID
	Type         MovementType
	Quantity     int64
	Reason       string
	MovementDate time.Time
	UserID       id.ID
}
