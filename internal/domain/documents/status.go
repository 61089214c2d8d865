// Package documents defines the shared lifecycle of warehouse transaction
// documents (entry and exit forms).
package documents

// Kind identifies the document family.
type Kind string

const (
	// KindEntry is a goods receipt form (stock increases on validation).
	KindEntry Kind = "entry"

	// KindExit is a goods dispatch form (stock decreases on validation).
	KindExit Kind = "exit"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	return k == KindEntry || k == KindExit
}

// Status is the lifecycle state of a document.
type Status string

const (
	// StatusDraft is the initial, fully editable state.
	StatusDraft Status = "draft"

	// StatusPending is a reserved intermediate state. The engine never
	// targets it; it exists for external approval flows and is treated as
	// committed by duplicate detection.
	StatusPending Status = "pending"

	// StatusCompleted means the document has been validated and its stock
	// effects applied.
	StatusCompleted Status = "completed"

	// StatusCancelled is terminal. Completed documents are cancelled with a
	// compensating stock reversal.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

// IsCommitted reports whether the document counts as a real business event
// for duplicate detection (pending or completed).
func (s Status) IsCommitted() bool {
	return s == StatusPending || s == StatusCompleted
}

// cancellableFrom lists the states each kind may be cancelled from.
// Entry forms cannot be cancelled from pending because their stock effect
// is only known once validated; exit forms may be abandoned at any
// non-terminal point.
var cancellableFrom = map[Kind][]Status{
	KindEntry: {StatusDraft, StatusCompleted},
	KindExit:  {StatusDraft, StatusPending, StatusCompleted},
}

// CanValidate reports whether a document in status s may be validated.
// Only drafts are validatable.
func CanValidate(s Status) bool {
	return s == StatusDraft
}

// CanCancel reports whether a document of the given kind in status s may be
// cancelled.
func CanCancel(kind Kind, s Status) bool {
	for _, from := range cancellableFrom[kind] {
		if from == s {
			return true
		}
	}
	return false
}

// CanModify reports whether document fields and items may still be edited.
// Items are mutable only while the document is a draft.
func CanModify(s Status) bool {
	return s == StatusDraft
}
