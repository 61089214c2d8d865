package duplicate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/storage/memory"
)

var day = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

// seedEntry puts a form directly into the store, bypassing the workflow.
func seedEntry(t *testing.T, store *memory.Store, reference string, date time.Time, supplierID id.ID, status documents.Status, qty int64) id.ID {
	t.Helper()

	productID := id.New()
	f := &entryform.EntryForm{
		BaseDocument: entity.NewBaseDocument(),
		Reference:    reference,
		Date:         date,
		SupplierID:   supplierID,
		Status:       status,
		UserID:       id.New(),
		Items: []*entryform.EntryItem{{
			ID:        id.New(),
			ProductID: productID,
			Quantity:  qty,
		}},
	}
	f.ComputeTotal()
	require.NoError(t, memory.NewEntryFormRepo(store).Create(context.Background(), f))
	return f.ID
}

func newDetector(t *testing.T, store *memory.Store, policy duplicate.MatchPolicy) *duplicate.Detector {
	t.Helper()

	d, err := duplicate.NewDetector(memory.NewDuplicateRepo(store), policy)
	require.NoError(t, err)
	return d
}

func TestFindCandidates_SameSupplierSameDay(t *testing.T) {
	store := memory.NewStore()
	supplierID := id.New()

	matchID := seedEntry(t, store, "ENT-A", day.Add(10*time.Hour), supplierID, documents.StatusCompleted, 5)
	seedEntry(t, store, "ENT-B", day.Add(10*time.Hour), id.New(), documents.StatusCompleted, 5)
	seedEntry(t, store, "ENT-C", day.Add(-2*time.Hour), supplierID, documents.StatusCompleted, 5)

	d := newDetector(t, store, duplicate.DefaultPolicy())
	candidates, err := d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day.Add(15 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, matchID, candidates[0].DocumentID)
}

func TestFindCandidates_CommittedStatusesOnly(t *testing.T) {
	store := memory.NewStore()
	supplierID := id.New()

	seedEntry(t, store, "ENT-DRAFT", day, supplierID, documents.StatusDraft, 5)
	seedEntry(t, store, "ENT-CANCELLED", day, supplierID, documents.StatusCancelled, 5)
	pendingID := seedEntry(t, store, "ENT-PENDING", day, supplierID, documents.StatusPending, 5)
	completedID := seedEntry(t, store, "ENT-COMPLETED", day, supplierID, documents.StatusCompleted, 5)

	d := newDetector(t, store, duplicate.DefaultPolicy())
	candidates, err := d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	found := map[id.ID]bool{}
	for _, c := range candidates {
		found[c.DocumentID] = true
	}
	assert.True(t, found[pendingID])
	assert.True(t, found[completedID])
}

func TestFindCandidates_Ordering(t *testing.T) {
	store := memory.NewStore()
	supplierID := id.New()

	seedEntry(t, store, "ENT-B", day.Add(8*time.Hour), supplierID, documents.StatusCompleted, 1)
	seedEntry(t, store, "ENT-A", day.Add(8*time.Hour), supplierID, documents.StatusCompleted, 1)
	seedEntry(t, store, "ENT-C", day.Add(20*time.Hour), supplierID, documents.StatusCompleted, 1)

	d := newDetector(t, store, duplicate.DefaultPolicy())
	candidates, err := d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// date descending, then reference ascending within the same instant
	assert.Equal(t, "ENT-C", candidates[0].Reference)
	assert.Equal(t, "ENT-A", candidates[1].Reference)
	assert.Equal(t, "ENT-B", candidates[2].Reference)
}

func TestFindCandidates_ExcludeID(t *testing.T) {
	store := memory.NewStore()
	supplierID := id.New()

	selfID := seedEntry(t, store, "ENT-SELF", day, supplierID, documents.StatusCompleted, 1)
	otherID := seedEntry(t, store, "ENT-OTHER", day, supplierID, documents.StatusCompleted, 1)

	d := newDetector(t, store, duplicate.DefaultPolicy())
	candidates, err := d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day,
		ExcludeID:  selfID,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, otherID, candidates[0].DocumentID)
}

func TestFindCandidates_RequireLineOverlap(t *testing.T) {
	store := memory.NewStore()
	supplierID := id.New()
	productID := id.New()

	f := &entryform.EntryForm{
		BaseDocument: entity.NewBaseDocument(),
		Reference:    "ENT-LINES",
		Date:         day,
		SupplierID:   supplierID,
		Status:       documents.StatusCompleted,
		UserID:       id.New(),
		Items: []*entryform.EntryItem{{
			ID:        id.New(),
			ProductID: productID,
			Quantity:  7,
		}},
	}
	f.ComputeTotal()
	require.NoError(t, memory.NewEntryFormRepo(store).Create(context.Background(), f))

	d := newDetector(t, store, duplicate.MatchPolicy{RequireLineOverlap: true})

	// same product, same quantity: match
	candidates, err := d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day,
		Lines:      []duplicate.Line{{ProductID: productID, Quantity: 7}},
	})
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	// same product, different quantity: no match
	candidates, err = d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day,
		Lines:      []duplicate.Line{{ProductID: productID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindCandidates_Expression(t *testing.T) {
	store := memory.NewStore()
	supplierID := id.New()

	seedEntry(t, store, "ENT-PENDING", day, supplierID, documents.StatusPending, 1)
	completedID := seedEntry(t, store, "ENT-COMPLETED", day, supplierID, documents.StatusCompleted, 1)

	d := newDetector(t, store, duplicate.MatchPolicy{
		Expression: `sameSupplier && status == "completed"`,
	})
	candidates, err := d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{
		SupplierID: supplierID,
		Date:       day,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, completedID, candidates[0].DocumentID)
}

func TestNewDetector_InvalidExpression(t *testing.T) {
	store := memory.NewStore()

	_, err := duplicate.NewDetector(memory.NewDuplicateRepo(store), duplicate.MatchPolicy{
		Expression: "sameSupplier &&",
	})
	assert.Error(t, err)

	// well-formed but not a bool
	_, err = duplicate.NewDetector(memory.NewDuplicateRepo(store), duplicate.MatchPolicy{
		Expression: "status",
	})
	assert.Error(t, err)
}

func TestFindCandidates_Validation(t *testing.T) {
	store := memory.NewStore()
	d := newDetector(t, store, duplicate.DefaultPolicy())

	_, err := d.FindCandidates(context.Background(), "invoice", duplicate.Query{Date: day})
	assert.Error(t, err)

	_, err = d.FindCandidates(context.Background(), documents.KindEntry, duplicate.Query{})
	assert.Error(t, err)
}
