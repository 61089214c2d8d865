// Package id provides UUID generation and handling.
// Uses UUIDv7 for time-ordered identifiers (better for database indexes).
package id

import (
	"github.com/google/uuid"
)

// ID is the standard identifier type across the platform
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered)
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if crypto/rand fails, which is catastrophic
		panic("failed to generate UUIDv7: " + err.Error())
	}
	return id
}

// Parse converts string to ID
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error (for tests/constants)
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns zero ID
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero value
func IsNil(id ID) bool {
	return id == uuid.Nil
}
