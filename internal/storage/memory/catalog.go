package memory

import (
	"context"
	"sort"
	"strings"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/auth"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/catalogs/supplier"
)

// meta adapts one catalog type to the generic repository.
type meta[T entity.Validatable] struct {
	entityName string
	items      func(s *Store) map[id.ID]T
	clone      func(T) T
	idOf       func(T) id.ID
	codeOf     func(T) string
	nameOf     func(T) string
	base       func(T) *entity.BaseEntity
}

// catalogRepo is a generic in-memory domain.CatalogRepository.
type catalogRepo[T entity.Validatable] struct {
	store *Store
	meta  meta[T]
}

func (r *catalogRepo[T]) Create(_ context.Context, e T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := r.meta.items(r.store)
	if _, ok := items[r.meta.idOf(e)]; ok {
		return apperror.NewConflict(r.meta.entityName + " already exists")
	}
	items[r.meta.idOf(e)] = r.meta.clone(e)
	return nil
}

func (r *catalogRepo[T]) GetByID(_ context.Context, entityID id.ID) (T, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var zero T
	e, ok := r.meta.items(r.store)[entityID]
	if !ok {
		return zero, apperror.NewNotFound(r.meta.entityName, entityID.String())
	}
	return r.meta.clone(e), nil
}

func (r *catalogRepo[T]) GetByCode(_ context.Context, code string) (T, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var zero T
	for _, e := range r.meta.items(r.store) {
		if r.meta.codeOf(e) == code && !r.meta.base(e).DeletionMark {
			return r.meta.clone(e), nil
		}
	}
	return zero, apperror.NewNotFound(r.meta.entityName, code)
}

func (r *catalogRepo[T]) Update(_ context.Context, e T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := r.meta.items(r.store)
	stored, ok := items[r.meta.idOf(e)]
	if !ok {
		return apperror.NewNotFound(r.meta.entityName, r.meta.idOf(e).String())
	}
	if r.meta.base(stored).Version != r.meta.base(e).Version {
		return apperror.NewConcurrentModification(r.meta.entityName, r.meta.idOf(e).String())
	}

	cp := r.meta.clone(e)
	r.meta.base(cp).Version++
	items[r.meta.idOf(e)] = cp
	r.meta.base(e).SetVersion(r.meta.base(cp).Version)
	return nil
}

func (r *catalogRepo[T]) SetDeletionMark(_ context.Context, entityID id.ID, marked bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.meta.items(r.store)[entityID]
	if !ok {
		return apperror.NewNotFound(r.meta.entityName, entityID.String())
	}
	b := r.meta.base(e)
	b.DeletionMark = marked
	b.Version++
	return nil
}

func (r *catalogRepo[T]) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	var matched []T
	for _, e := range r.meta.items(r.store) {
		if !filter.IncludeDeleted && r.meta.base(e).DeletionMark {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.meta.nameOf(e)), search) &&
			!strings.Contains(strings.ToLower(r.meta.codeOf(e)), search) {
			continue
		}
		matched = append(matched, r.meta.clone(e))
	}

	less := func(i, j int) bool {
		if filter.OrderBy == "code" {
			return r.meta.codeOf(matched[i]) < r.meta.codeOf(matched[j])
		}
		return r.meta.nameOf(matched[i]) < r.meta.nameOf(matched[j])
	}
	if filter.OrderDesc {
		sort.SliceStable(matched, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(matched, less)
	}

	total := int64(len(matched))
	matched = paginate(matched, filter.Offset, filter.Limit)

	return domain.ListResult[T]{
		Items:      matched,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (r *catalogRepo[T]) Exists(_ context.Context, entityID id.ID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.meta.items(r.store)[entityID]
	if !ok {
		return false, nil
	}
	return !r.meta.base(e).DeletionMark, nil
}

func (r *catalogRepo[T]) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.meta.items(r.store) {
		if r.meta.codeOf(e) == code && !r.meta.base(e).DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --- concrete repositories ---

// CategoryRepo is the in-memory category repository.
type CategoryRepo struct {
	*catalogRepo[*category.Category]
}

// NewCategoryRepo creates a category repository over the store.
func NewCategoryRepo(store *Store) *CategoryRepo {
	return &CategoryRepo{&catalogRepo[*category.Category]{
		store: store,
		meta: meta[*category.Category]{
			entityName: "category",
			items:      func(s *Store) map[id.ID]*category.Category { return s.categories },
			clone:      cloneCategory,
			idOf:       func(c *category.Category) id.ID { return c.ID },
			codeOf:     func(c *category.Category) string { return c.Code },
			nameOf:     func(c *category.Category) string { return c.Name },
			base:       func(c *category.Category) *entity.BaseEntity { return &c.BaseEntity },
		},
	}}
}

// SupplierRepo is the in-memory supplier repository.
type SupplierRepo struct {
	*catalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a supplier repository over the store.
func NewSupplierRepo(store *Store) *SupplierRepo {
	return &SupplierRepo{&catalogRepo[*supplier.Supplier]{
		store: store,
		meta: meta[*supplier.Supplier]{
			entityName: "supplier",
			items:      func(s *Store) map[id.ID]*supplier.Supplier { return s.suppliers },
			clone:      cloneSupplier,
			idOf:       func(sp *supplier.Supplier) id.ID { return sp.ID },
			codeOf:     func(sp *supplier.Supplier) string { return sp.Code },
			nameOf:     func(sp *supplier.Supplier) string { return sp.Name },
			base:       func(sp *supplier.Supplier) *entity.BaseEntity { return &sp.BaseEntity },
		},
	}}
}

// ProductRepo is the in-memory product repository.
type ProductRepo struct {
	*catalogRepo[*product.Product]
}

// NewProductRepo creates a product repository over the store.
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{&catalogRepo[*product.Product]{
		store: store,
		meta: meta[*product.Product]{
			entityName: "product",
			items:      func(s *Store) map[id.ID]*product.Product { return s.products },
			clone:      cloneProduct,
			idOf:       func(p *product.Product) id.ID { return p.ID },
			codeOf:     func(p *product.Product) string { return p.Reference },
			nameOf:     func(p *product.Product) string { return p.Name },
			base:       func(p *product.Product) *entity.BaseEntity { return &p.BaseEntity },
		},
	}}
}

// GetByIDs loads several products; missing ids are absent from the result.
func (r *ProductRepo) GetByIDs(_ context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[id.ID]*product.Product, len(ids))
	for _, pid := range ids {
		if p, ok := r.store.products[pid]; ok && !p.DeletionMark {
			result[pid] = cloneProduct(p)
		}
	}
	return result, nil
}

// ListLowStock returns products at or below their alert threshold.
func (r *ProductRepo) ListLowStock(_ context.Context) ([]*product.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*product.Product
	for _, p := range r.store.products {
		if !p.DeletionMark && p.IsLowStock() {
			result = append(result, cloneProduct(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// UserRepo is the in-memory user repository.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a user repository over the store.
func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Create(_ context.Context, u *auth.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[u.ID]; ok {
		return apperror.NewConflict("user already exists")
	}
	r.store.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *UserRepo) Update(_ context.Context, u *auth.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.users[u.ID]
	if !ok {
		return apperror.NewNotFound("user", u.ID.String())
	}
	if stored.Version != u.Version {
		return apperror.NewConcurrentModification("user", u.ID.String())
	}

	cp := cloneUser(u)
	cp.Version++
	r.store.users[u.ID] = cp
	u.SetVersion(cp.Version)
	return nil
}

func (r *UserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}
