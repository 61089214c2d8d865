// Package sequence_repo allocates document reference sequences from
// PostgreSQL. An upsert with RETURNING keeps allocation atomic across
// concurrent creators.
package sequence_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/infrastructure/storage/postgres"
	"stockhouse/pkg/refseq"
)

const nextSQL = `
INSERT INTO doc_sequences (key, current_val)
VALUES ($1, 1)
ON CONFLICT (key) DO UPDATE SET current_val = doc_sequences.current_val + 1
RETURNING current_val`

// Compile-time check against the generator contract.
var _ refseq.Store = (*SeqStore)(nil)

// SeqStore implements refseq.Store.
type SeqStore struct {
	txm *postgres.TxManager
}

// NewSeqStore creates a sequence store. It is usually called outside any
// transaction so a rollback elsewhere leaves at most a gap, never a
// duplicate.
func NewSeqStore(txm *postgres.TxManager) *SeqStore {
	return &SeqStore{txm: txm}
}

// Next returns the next value for key, starting at 1.
func (s *SeqStore) Next(ctx context.Context, key string) (int64, error) {
	var val int64
	if err := pgxscan.Get(ctx, s.txm.GetQuerier(ctx), &val, nextSQL, key); err != nil {
		return 0, fmt.Errorf("next sequence value for %s: %w", key, err)
	}
	return val, nil
}
