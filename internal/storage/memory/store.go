// Package memory provides in-memory repository implementations backed by a
// single Store. They serve tests and local development; the transaction
// manager gives real rollback semantics by snapshotting store state.
package memory

import (
	"sync"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/auth"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/catalogs/supplier"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/documents/exitform"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/domain/stock"
)

// Store holds all in-memory state.
type Store struct {
	mu sync.RWMutex

	categories map[id.ID]*category.Category
	suppliers  map[id.ID]*supplier.Supplier
	products   map[id.ID]*product.Product
	users      map[id.ID]*auth.User

	entryForms map[id.ID]*entryform.EntryForm
	exitForms  map[id.ID]*exitform.ExitForm

	movements []*stock.StockMovement
	histories []*history.HistoryEntry

	sequences map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		categories: make(map[id.ID]*category.Category),
		suppliers:  make(map[id.ID]*supplier.Supplier),
		products:   make(map[id.ID]*product.Product),
		users:      make(map[id.ID]*auth.User),
		entryForms: make(map[id.ID]*entryform.EntryForm),
		exitForms:  make(map[id.ID]*exitform.ExitForm),
		sequences:  make(map[string]int64),
	}
}

// --- snapshot / restore for transactional rollback ---

type snapshot struct {
	categories map[id.ID]*category.Category
	suppliers  map[id.ID]*supplier.Supplier
	products   map[id.ID]*product.Product
	users      map[id.ID]*auth.User
	entryForms map[id.ID]*entryform.EntryForm
	exitForms  map[id.ID]*exitform.ExitForm
	movements  []*stock.StockMovement
	histories  []*history.HistoryEntry
	sequences  map[string]int64
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &snapshot{
		categories: make(map[id.ID]*category.Category, len(s.categories)),
		suppliers:  make(map[id.ID]*supplier.Supplier, len(s.suppliers)),
		products:   make(map[id.ID]*product.Product, len(s.products)),
		users:      make(map[id.ID]*auth.User, len(s.users)),
		entryForms: make(map[id.ID]*entryform.EntryForm, len(s.entryForms)),
		exitForms:  make(map[id.ID]*exitform.ExitForm, len(s.exitForms)),
		movements:  make([]*stock.StockMovement, len(s.movements)),
		histories:  make([]*history.HistoryEntry, len(s.histories)),
		sequences:  make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.categories {
		snap.categories[k] = cloneCategory(v)
	}
	for k, v := range s.suppliers {
		snap.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.products {
		snap.products[k] = cloneProduct(v)
	}
	for k, v := range s.users {
		snap.users[k] = cloneUser(v)
	}
	for k, v := range s.entryForms {
		snap.entryForms[k] = cloneEntryForm(v)
	}
	for k, v := range s.exitForms {
		snap.exitForms[k] = cloneExitForm(v)
	}
	for i, m := range s.movements {
		snap.movements[i] = cloneMovement(m)
	}
	for i, h := range s.histories {
		snap.histories[i] = cloneHistory(h)
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = snap.categories
	s.suppliers = snap.suppliers
	s.products = snap.products
	s.users = snap.users
	s.entryForms = snap.entryForms
	s.exitForms = snap.exitForms
	s.movements = snap.movements
	s.histories = snap.histories
	s.sequences = snap.sequences
}

// --- clone helpers ---

func cloneCategory(c *category.Category) *category.Category {
	cp := *c
	return &cp
}

func cloneSupplier(sp *supplier.Supplier) *supplier.Supplier {
	cp := *sp
	return &cp
}

func cloneProduct(p *product.Product) *product.Product {
	cp := *p
	return &cp
}

func cloneUser(u *auth.User) *auth.User {
	cp := *u
	return &cp
}

func cloneEntryForm(f *entryform.EntryForm) *entryform.EntryForm {
	cp := *f
	cp.Items = make([]*entryform.EntryItem, len(f.Items))
	for i, item := range f.Items {
		ic := *item
		cp.Items[i] = &ic
	}
	return &cp
}

func cloneExitForm(f *exitform.ExitForm) *exitform.ExitForm {
	cp := *f
	cp.Items = make([]*exitform.ExitItem, len(f.Items))
	for i, item := range f.Items {
		ic := *item
		cp.Items[i] = &ic
	}
	return &cp
}

func cloneMovement(m *stock.StockMovement) *stock.StockMovement {
	cp := *m
	return &cp
}

func cloneHistory(h *history.HistoryEntry) *history.HistoryEntry {
	cp := *h
	if h.OldValue != nil {
		v := *h.OldValue
		cp.OldValue = &v
	}
	if h.NewValue != nil {
		v := *h.NewValue
		cp.NewValue = &v
	}
	cp.Snapshot = append([]byte(nil), h.Snapshot...)
	cp.SnapshotZstd = append([]byte(nil), h.SnapshotZstd...)
	return &cp
}
