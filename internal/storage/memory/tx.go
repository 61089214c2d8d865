package memory

import (
	"context"
)

type txDepthKey struct{}

// TxManager implements tx.Manager over the in-memory store. A snapshot of
// the whole store is taken before the function runs and restored if it
// fails, mirroring database rollback behavior closely enough for tests.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn, restoring pre-call state on error.
// Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if depth, _ := ctx.Value(txDepthKey{}).(int); depth > 0 {
		return fn(context.WithValue(ctx, txDepthKey{}, depth+1))
	}

	snap := m.store.snapshot()
	err := fn(context.WithValue(ctx, txDepthKey{}, 1))
	if err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// ReadOnly executes fn without snapshotting.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
