// Package reports builds read-only aggregates over completed documents and
// the movement ledger. Nothing here mutates state; empty ranges produce
// zeroed results, never errors.
package reports

import (
	"time"

	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
)

// Summary is the period overview.
type Summary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Completed document counts and money totals
	EntriesCount int         `json:"entriesCount"`
	ExitsCount   int         `json:"exitsCount"`
	EntriesTotal types.Money `json:"entriesTotal"`
	ExitsTotal   types.Money `json:"exitsTotal"`

	// Ledger quantity totals (magnitudes)
	EntryQuantity int64 `json:"entryQuantity"`
	ExitQuantity  int64 `json:"exitQuantity"`
}

// FormTotals carries completed-document aggregates from storage.
type FormTotals struct {
	EntriesCount int
	ExitsCount   int
	EntriesTotal types.Money
	ExitsTotal   types.Money
}

// CategoryRow is the per-category movement rollup.
type CategoryRow struct {
	CategoryID   id.ID  `json:"categoryId"`
	CategoryName string `json:"categoryName"`

	EntryQuantity int64 `json:"entryQuantity"`
	ExitQuantity  int64 `json:"exitQuantity"`

	// Values at the products' catalog prices
	EntryValue types.Money `json:"entryValue"`
	ExitValue  types.Money `json:"exitValue"`
}

// SeriesPoint is one day of movement quantities.
type SeriesPoint struct {
	Day           time.Time `json:"day"`
	EntryQuantity int64     `json:"entryQuantity"`
	ExitQuantity  int64     `json:"exitQuantity"`
}
