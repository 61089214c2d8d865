// Package history is the append-only field-level change log for documents.
// Entries are never updated or deleted; correcting a mistake means another
// business operation that writes its own entry.
package history

import (
	"encoding/json"
	"time"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
)

// CompressionAlgo specifies how a snapshot payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// HistoryEntry is one immutable change record.
type HistoryEntry struct {
	ID id.ID `db:"id" json:"id"`

	// DocumentKind + DocumentID identify the changed document
	DocumentKind documents.Kind `db:"document_kind" json:"documentKind"`
	DocumentID   id.ID          `db:"document_id" json:"documentId"`

	// UserID is the user who made the change
	UserID id.ID `db:"user_id" json:"userId"`

	// Field names the changed field ("status", "notes", ...)
	Field string `db:"field" json:"field"`

	// OldValue/NewValue are nullable string renderings of the change
	OldValue *string `db:"old_value" json:"oldValue,omitempty"`
	NewValue *string `db:"new_value" json:"newValue,omitempty"`

	// Reason is the optional operator-supplied justification
	Reason string `db:"reason" json:"reason,omitempty"`

	// Snapshot is an optional JSON capture of the whole document at change
	// time. Large snapshots are stored zstd-compressed.
	Snapshot        json.RawMessage `db:"snapshot" json:"snapshot,omitempty"`
	SnapshotZstd    []byte          `db:"snapshot_zstd" json:"-"`
	CompressionAlgo CompressionAlgo `db:"compression_algo" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HistoryInput describes an append.
type HistoryInput struct {
	DocumentKind documents.Kind
	DocumentID   id.ID
	UserID       id.ID
	Field        string
	OldValue     *string
	NewValue     *string
	Reason       string

	// Snapshot is optional; nil means no capture
	Snapshot json.RawMessage
}

// StrPtr is a small helper for building nullable values.
func StrPtr(s string) *string {
	return &s
}
