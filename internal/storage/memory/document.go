package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/documents/exitform"
)

// EntryFormRepo is the in-memory entry form repository.
type EntryFormRepo struct {
	store *Store
}

// NewEntryFormRepo creates an entry form repository over the store.
func NewEntryFormRepo(store *Store) *EntryFormRepo {
	return &EntryFormRepo{store: store}
}

func (r *EntryFormRepo) Create(_ context.Context, f *entryform.EntryForm) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.entryForms[f.ID]; ok {
		return apperror.NewConflict("entry form already exists")
	}
	for _, existing := range r.store.entryForms {
		if existing.Reference == f.Reference {
			return apperror.NewDuplicateReference("entry", f.Reference)
		}
	}
	r.store.entryForms[f.ID] = cloneEntryForm(f)
	return nil
}

func (r *EntryFormRepo) GetByID(_ context.Context, formID id.ID) (*entryform.EntryForm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	f, ok := r.store.entryForms[formID]
	if !ok {
		return nil, apperror.NewNotFound("entry form", formID.String())
	}
	return cloneEntryForm(f), nil
}

func (r *EntryFormRepo) GetByReference(_ context.Context, reference string) (*entryform.EntryForm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, f := range r.store.entryForms {
		if f.Reference == reference && !f.DeletionMark {
			return cloneEntryForm(f), nil
		}
	}
	return nil, apperror.NewNotFound("entry form", reference)
}

func (r *EntryFormRepo) Update(_ context.Context, f *entryform.EntryForm) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.entryForms[f.ID]
	if !ok {
		return apperror.NewNotFound("entry form", f.ID.String())
	}
	if stored.Version != f.Version {
		return apperror.NewConcurrentModification("entry form", f.ID.String())
	}

	cp := cloneEntryForm(f)
	cp.Version++
	cp.UpdatedAt = time.Now().UTC()
	r.store.entryForms[f.ID] = cp

	f.SetVersion(cp.Version)
	f.UpdatedAt = cp.UpdatedAt
	return nil
}

func (r *EntryFormRepo) List(_ context.Context, filter entryform.Filter) (domain.ListResult[*entryform.EntryForm], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	var matched []*entryform.EntryForm
	for _, f := range r.store.entryForms {
		if !filter.IncludeDeleted && f.DeletionMark {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if !id.IsNil(filter.SupplierID) && f.SupplierID != filter.SupplierID {
			continue
		}
		if !filter.DateFrom.IsZero() && f.Date.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && f.Date.After(filter.DateTo) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(f.Reference), search) {
			continue
		}
		matched = append(matched, cloneEntryForm(f))
	}

	sortForms(matched, func(f *entryform.EntryForm) (time.Time, string) { return f.Date, f.Reference }, filter.OrderDesc)

	total := int64(len(matched))
	matched = paginate(matched, filter.Offset, filter.Limit)

	return domain.ListResult[*entryform.EntryForm]{
		Items:      matched,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (r *EntryFormRepo) ListByPeriod(_ context.Context, start, end time.Time, status documents.Status) ([]*entryform.EntryForm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*entryform.EntryForm
	for _, f := range r.store.entryForms {
		if f.DeletionMark || f.Status != status {
			continue
		}
		if f.Date.Before(start) || f.Date.After(end) {
			continue
		}
		matched = append(matched, cloneEntryForm(f))
	}
	sortForms(matched, func(f *entryform.EntryForm) (time.Time, string) { return f.Date, f.Reference }, false)
	return matched, nil
}

func (r *EntryFormRepo) SetDeletionMark(_ context.Context, formID id.ID, marked bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	f, ok := r.store.entryForms[formID]
	if !ok {
		return apperror.NewNotFound("entry form", formID.String())
	}
	f.DeletionMark = marked
	f.Version++
	return nil
}

func (r *EntryFormRepo) ExistsByReference(_ context.Context, reference string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, f := range r.store.entryForms {
		if f.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

// ExitFormRepo is the in-memory exit form repository.
type ExitFormRepo struct {
	store *Store
}

// NewExitFormRepo creates an exit form repository over the store.
func NewExitFormRepo(store *Store) *ExitFormRepo {
	return &ExitFormRepo{store: store}
}

func (r *ExitFormRepo) Create(_ context.Context, f *exitform.ExitForm) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.exitForms[f.ID]; ok {
		return apperror.NewConflict("exit form already exists")
	}
	for _, existing := range r.store.exitForms {
		if existing.Reference == f.Reference {
			return apperror.NewDuplicateReference("exit", f.Reference)
		}
	}
	r.store.exitForms[f.ID] = cloneExitForm(f)
	return nil
}

func (r *ExitFormRepo) GetByID(_ context.Context, formID id.ID) (*exitform.ExitForm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	f, ok := r.store.exitForms[formID]
	if !ok {
		return nil, apperror.NewNotFound("exit form", formID.String())
	}
	return cloneExitForm(f), nil
}

func (r *ExitFormRepo) GetByReference(_ context.Context, reference string) (*exitform.ExitForm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, f := range r.store.exitForms {
		if f.Reference == reference && !f.DeletionMark {
			return cloneExitForm(f), nil
		}
	}
	return nil, apperror.NewNotFound("exit form", reference)
}

func (r *ExitFormRepo) Update(_ context.Context, f *exitform.ExitForm) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.exitForms[f.ID]
	if !ok {
		return apperror.NewNotFound("exit form", f.ID.String())
	}
	if stored.Version != f.Version {
		return apperror.NewConcurrentModification("exit form", f.ID.String())
	}

	cp := cloneExitForm(f)
	cp.Version++
	cp.UpdatedAt = time.Now().UTC()
	r.store.exitForms[f.ID] = cp

	f.SetVersion(cp.Version)
	f.UpdatedAt = cp.UpdatedAt
	return nil
}

func (r *ExitFormRepo) List(_ context.Context, filter exitform.Filter) (domain.ListResult[*exitform.ExitForm], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	var matched []*exitform.ExitForm
	for _, f := range r.store.exitForms {
		if !filter.IncludeDeleted && f.DeletionMark {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Destination != "" && f.Destination != filter.Destination {
			continue
		}
		if !filter.DateFrom.IsZero() && f.Date.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && f.Date.After(filter.DateTo) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(f.Reference), search) {
			continue
		}
		matched = append(matched, cloneExitForm(f))
	}

	sortForms(matched, func(f *exitform.ExitForm) (time.Time, string) { return f.Date, f.Reference }, filter.OrderDesc)

	total := int64(len(matched))
	matched = paginate(matched, filter.Offset, filter.Limit)

	return domain.ListResult[*exitform.ExitForm]{
		Items:      matched,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (r *ExitFormRepo) ListByPeriod(_ context.Context, start, end time.Time, status documents.Status) ([]*exitform.ExitForm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*exitform.ExitForm
	for _, f := range r.store.exitForms {
		if f.DeletionMark || f.Status != status {
			continue
		}
		if f.Date.Before(start) || f.Date.After(end) {
			continue
		}
		matched = append(matched, cloneExitForm(f))
	}
	sortForms(matched, func(f *exitform.ExitForm) (time.Time, string) { return f.Date, f.Reference }, false)
	return matched, nil
}

func (r *ExitFormRepo) SetDeletionMark(_ context.Context, formID id.ID, marked bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	f, ok := r.store.exitForms[formID]
	if !ok {
		return apperror.NewNotFound("exit form", formID.String())
	}
	f.DeletionMark = marked
	f.Version++
	return nil
}

func (r *ExitFormRepo) ExistsByReference(_ context.Context, reference string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, f := range r.store.exitForms {
		if f.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

// sortForms orders by date then reference, ascending unless desc.
func sortForms[T any](forms []T, key func(T) (time.Time, string), desc bool) {
	sort.SliceStable(forms, func(i, j int) bool {
		di, ri := key(forms[i])
		dj, rj := key(forms[j])
		var less bool
		if !di.Equal(dj) {
			less = di.Before(dj)
		} else {
			less = ri < rj
		}
		if desc {
			return !less
		}
		return less
	})
}
