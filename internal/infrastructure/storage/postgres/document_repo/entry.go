// Package document_repo provides PostgreSQL repositories for entry and exit
// forms. Documents and their items are persisted together; items are
// replaced wholesale on update.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const (
	entryFormsTable = "entry_forms"
	entryItemsTable = "entry_items"
)

var entryFormColumns = []string{
	"id", "reference", "date", "supplier_id", "status", "user_id",
	"notes", "total", "deletion_mark", "version", "created_at", "updated_at",
}

var entryItemColumns = []string{
	"id", "form_id", "product_id", "quantity", "unit_price", "line_total",
}

// EntryFormRepo implements entryform.Repository.
type EntryFormRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewEntryFormRepo creates an entry form repository.
func NewEntryFormRepo(txm *postgres.TxManager) *EntryFormRepo {
	return &EntryFormRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *EntryFormRepo) Create(ctx context.Context, f *entryform.EntryForm) error {
	q := r.builder.Insert(entryFormsTable).
		Columns(entryFormColumns...).
		Values(f.ID, f.Reference, f.Date, f.SupplierID, f.Status, f.UserID,
			f.Notes, f.Total, f.DeletionMark, f.Version, f.CreatedAt, f.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry form: %w", err)
	}

	return r.insertItems(ctx, f.ID, f.Items)
}

func (r *EntryFormRepo) insertItems(ctx context.Context, formID id.ID, items []*entryform.EntryItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(entryItemsTable).Columns(entryItemColumns...)
	for _, item := range items {
		q = q.Values(item.ID, formID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry items: %w", err)
	}
	return nil
}

func (r *EntryFormRepo) GetByID(ctx context.Context, formID id.ID) (*entryform.EntryForm, error) {
	return r.getOne(ctx, squirrel.Eq{"id": formID}, formID.String())
}

func (r *EntryFormRepo) GetByReference(ctx context.Context, reference string) (*entryform.EntryForm, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference}, reference)
}

func (r *EntryFormRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*entryform.EntryForm, error) {
	q := r.builder.Select(entryFormColumns...).From(entryFormsTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var f entryform.EntryForm
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &f, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("entry form", key)
		}
		return nil, fmt.Errorf("get entry form: %w", err)
	}

	if err := r.loadItems(ctx, []*entryform.EntryForm{&f}); err != nil {
		return nil, err
	}
	return &f, nil
}

// loadItems populates items for a batch of forms in one query.
func (r *EntryFormRepo) loadItems(ctx context.Context, forms []*entryform.EntryForm) error {
	if len(forms) == 0 {
		return nil
	}

	ids := make([]id.ID, len(forms))
	byID := make(map[id.ID]*entryform.EntryForm, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
		byID[f.ID] = f
		f.Items = nil
	}

	q := r.builder.Select(entryItemColumns...).From(entryItemsTable).
		Where(squirrel.Eq{"form_id": ids}).
		OrderBy("id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build select items: %w", err)
	}

	var items []*entryform.EntryItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return fmt.Errorf("load entry items: %w", err)
	}

	for _, item := range items {
		if f, ok := byID[item.FormID]; ok {
			f.Items = append(f.Items, item)
		}
	}
	return nil
}

func (r *EntryFormRepo) Update(ctx context.Context, f *entryform.EntryForm) error {
	now := time.Now().UTC()

	q := r.builder.Update(entryFormsTable).
		Set("reference", f.Reference).
		Set("date", f.Date).
		Set("supplier_id", f.SupplierID).
		Set("status", f.Status).
		Set("notes", f.Notes).
		Set("total", f.Total).
		Set("deletion_mark", f.DeletionMark).
		Set("version", f.Version+1).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": f.ID, "version": f.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update entry form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("entry form", f.ID.String())
	}

	if err := r.replaceItems(ctx, f.ID, f.Items); err != nil {
		return err
	}

	f.SetVersion(f.Version + 1)
	f.UpdatedAt = now
	return nil
}

func (r *EntryFormRepo) replaceItems(ctx context.Context, formID id.ID, items []*entryform.EntryItem) error {
	del := r.builder.Delete(entryItemsTable).Where(squirrel.Eq{"form_id": formID})
	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete entry items: %w", err)
	}
	return r.insertItems(ctx, formID, items)
}

func (r *EntryFormRepo) List(ctx context.Context, filter entryform.Filter) (domain.ListResult[*entryform.EntryForm], error) {
	var result domain.ListResult[*entryform.EntryForm]

	where := squirrel.And{}
	if !filter.IncludeDeleted {
		where = append(where, squirrel.Eq{"deletion_mark": false})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if !id.IsNil(filter.SupplierID) {
		where = append(where, squirrel.Eq{"supplier_id": filter.SupplierID})
	}
	if !filter.DateFrom.IsZero() {
		where = append(where, squirrel.GtOrEq{"date": filter.DateFrom})
	}
	if !filter.DateTo.IsZero() {
		where = append(where, squirrel.LtOrEq{"date": filter.DateTo})
	}
	if filter.Search != "" {
		where = append(where, squirrel.ILike{"reference": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(entryFormsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &result.TotalCount, countSQL, countArgs...); err != nil {
		return result, fmt.Errorf("count entry forms: %w", err)
	}

	order := "date DESC, reference ASC"
	if filter.OrderBy == "reference" {
		order = "reference ASC"
	}

	q := r.builder.Select(entryFormColumns...).From(entryFormsTable).
		Where(where).OrderBy(order)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build select: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list entry forms: %w", err)
	}

	if err := r.loadItems(ctx, result.Items); err != nil {
		return result, err
	}

	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

func (r *EntryFormRepo) ListByPeriod(ctx context.Context, start, end time.Time, status documents.Status) ([]*entryform.EntryForm, error) {
	q := r.builder.Select(entryFormColumns...).From(entryFormsTable).
		Where(squirrel.Eq{"deletion_mark": false, "status": status}).
		Where(squirrel.GtOrEq{"date": start}).
		Where(squirrel.LtOrEq{"date": end}).
		OrderBy("date ASC", "reference ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var forms []*entryform.EntryForm
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &forms, sql, args...); err != nil {
		return nil, fmt.Errorf("list entry forms by period: %w", err)
	}

	if err := r.loadItems(ctx, forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *EntryFormRepo) SetDeletionMark(ctx context.Context, formID id.ID, marked bool) error {
	q := r.builder.Update(entryFormsTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": formID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("entry form", formID.String())
	}
	return nil
}

func (r *EntryFormRepo) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	inner := r.builder.Select("1").From(entryFormsTable).
		Where(squirrel.Eq{"reference": reference})
	innerSQL, args, err := inner.ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var found bool
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &found, "SELECT EXISTS ("+innerSQL+")", args...); err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return found, nil
}
