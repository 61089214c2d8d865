package history_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/storage/memory"
)

func newService(t *testing.T) *history.Service {
	t.Helper()

	svc, err := history.NewService(memory.NewHistoryRepo(memory.NewStore()))
	require.NoError(t, err)
	return svc
}

func TestRecordAndHistory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	docID := id.New()
	userID := id.New()

	first, err := svc.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindEntry,
		DocumentID:   docID,
		UserID:       userID,
		Field:        "status",
		NewValue:     history.StrPtr("draft"),
	})
	require.NoError(t, err)

	second, err := svc.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindEntry,
		DocumentID:   docID,
		UserID:       userID,
		Field:        "status",
		OldValue:     history.StrPtr("draft"),
		NewValue:     history.StrPtr("completed"),
		Reason:       "goods received",
	})
	require.NoError(t, err)

	entries, err := svc.History(ctx, documents.KindEntry, docID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, "goods received", entries[0].Reason)
}

func TestRecord_SmallSnapshotStoredRaw(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	snapshot := json.RawMessage(`{"status":"completed","total":"24.50"}`)
	e, err := svc.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindEntry,
		DocumentID:   id.New(),
		UserID:       id.New(),
		Field:        "status",
		Snapshot:     snapshot,
	})
	require.NoError(t, err)
	assert.Equal(t, history.CompressionNone, e.CompressionAlgo)
	assert.Equal(t, []byte(snapshot), []byte(e.Snapshot))
	assert.Empty(t, e.SnapshotZstd)
}

func TestRecord_LargeSnapshotCompressedRoundTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	docID := id.New()

	// well over the 10KB threshold
	payload := struct {
		Items []string `json:"items"`
	}{}
	for i := 0; i < 2000; i++ {
		payload.Items = append(payload.Items, "line item with a reasonably long description")
	}
	snapshot, err := json.Marshal(payload)
	require.NoError(t, err)
	require.Greater(t, len(snapshot), 10*1024)

	e, err := svc.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindEntry,
		DocumentID:   docID,
		UserID:       id.New(),
		Field:        "status",
		Snapshot:     snapshot,
	})
	require.NoError(t, err)
	assert.Equal(t, history.CompressionZstd, e.CompressionAlgo)
	assert.Empty(t, e.Snapshot)
	assert.NotEmpty(t, e.SnapshotZstd)
	assert.Less(t, len(e.SnapshotZstd), len(snapshot))

	// reads return the decompressed payload transparently
	entries, err := svc.History(ctx, documents.KindEntry, docID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.CompressionNone, entries[0].CompressionAlgo)
	assert.True(t, bytes.Equal(snapshot, entries[0].Snapshot))
}

func TestRecord_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, history.HistoryInput{
		DocumentKind: "invoice",
		DocumentID:   id.New(),
		UserID:       id.New(),
		Field:        "status",
	})
	assert.Error(t, err)

	_, err = svc.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindEntry,
		DocumentID:   id.New(),
		UserID:       id.New(),
	})
	assert.Error(t, err, "field is required")
}

func TestHistory_KindIsolation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	docID := id.New()

	_, err := svc.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindEntry,
		DocumentID:   docID,
		UserID:       id.New(),
		Field:        "status",
	})
	require.NoError(t, err)

	entries, err := svc.History(ctx, documents.KindExit, docID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
