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
	"stockhouse/internal/domain/documents/exitform"
	"stockhouse/internal/infrastructure/storage/postgres"
)

const (
	exitFormsTable = "exit_forms"
	exitItemsTable = "exit_items"
)

var exitFormColumns = []string{
	"id", "reference", "date", "destination", "reason", "status", "user_id",
	"notes", "total", "deletion_mark", "version", "created_at", "updated_at",
}

var exitItemColumns = []string{
	"id", "form_id", "product_id", "quantity", "line_total",
}

// ExitFormRepo implements exitform.Repository.
type ExitFormRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewExitFormRepo creates an exit form repository.
func NewExitFormRepo(txm *postgres.TxManager) *ExitFormRepo {
	return &ExitFormRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ExitFormRepo) Create(ctx context.Context, f *exitform.ExitForm) error {
	q := r.builder.Insert(exitFormsTable).
		Columns(exitFormColumns...).
		Values(f.ID, f.Reference, f.Date, f.Destination, f.Reason, f.Status, f.UserID,
			f.Notes, f.Total, f.DeletionMark, f.Version, f.CreatedAt, f.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert exit form: %w", err)
	}

	return r.insertItems(ctx, f.ID, f.Items)
}

func (r *ExitFormRepo) insertItems(ctx context.Context, formID id.ID, items []*exitform.ExitItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(exitItemsTable).Columns(exitItemColumns...)
	for _, item := range items {
		q = q.Values(item.ID, formID, item.ProductID, item.Quantity, item.LineTotal)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert exit items: %w", err)
	}
	return nil
}

func (r *ExitFormRepo) GetByID(ctx context.Context, formID id.ID) (*exitform.ExitForm, error) {
	return r.getOne(ctx, squirrel.Eq{"id": formID}, formID.String())
}

func (r *ExitFormRepo) GetByReference(ctx context.Context, reference string) (*exitform.ExitForm, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference}, reference)
}

func (r *ExitFormRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*exitform.ExitForm, error) {
	q := r.builder.Select(exitFormColumns...).From(exitFormsTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var f exitform.ExitForm
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &f, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("exit form", key)
		}
		return nil, fmt.Errorf("get exit form: %w", err)
	}

	if err := r.loadItems(ctx, []*exitform.ExitForm{&f}); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *ExitFormRepo) loadItems(ctx context.Context, forms []*exitform.ExitForm) error {
	if len(forms) == 0 {
		return nil
	}

	ids := make([]id.ID, len(forms))
	byID := make(map[id.ID]*exitform.ExitForm, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
		byID[f.ID] = f
		f.Items = nil
	}

	q := r.builder.Select(exitItemColumns...).From(exitItemsTable).
		Where(squirrel.Eq{"form_id": ids}).
		OrderBy("id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build select items: %w", err)
	}

	var items []*exitform.ExitItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return fmt.Errorf("load exit items: %w", err)
	}

	for _, item := range items {
		if f, ok := byID[item.FormID]; ok {
			f.Items = append(f.Items, item)
		}
	}
	return nil
}

func (r *ExitFormRepo) Update(ctx context.Context, f *exitform.ExitForm) error {
	now := time.Now().UTC()

	q := r.builder.Update(exitFormsTable).
		Set("reference", f.Reference).
		Set("date", f.Date).
		Set("destination", f.Destination).
		Set("reason", f.Reason).
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
		return fmt.Errorf("update exit form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("exit form", f.ID.String())
	}

	if err := r.replaceItems(ctx, f.ID, f.Items); err != nil {
		return err
	}

	f.SetVersion(f.Version + 1)
	f.UpdatedAt = now
	return nil
}

func (r *ExitFormRepo) replaceItems(ctx context.Context, formID id.ID, items []*exitform.ExitItem) error {
	del := r.builder.Delete(exitItemsTable).Where(squirrel.Eq{"form_id": formID})
	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete exit items: %w", err)
	}
	return r.insertItems(ctx, formID, items)
}

func (r *ExitFormRepo) List(ctx context.Context, filter exitform.Filter) (domain.ListResult[*exitform.ExitForm], error) {
	var result domain.ListResult[*exitform.ExitForm]

	where := squirrel.And{}
	if !filter.IncludeDeleted {
		where = append(where, squirrel.Eq{"deletion_mark": false})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Destination != "" {
		where = append(where, squirrel.Eq{"destination": filter.Destination})
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

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(exitFormsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &result.TotalCount, countSQL, countArgs...); err != nil {
		return result, fmt.Errorf("count exit forms: %w", err)
	}

	order := "date DESC, reference ASC"
	if filter.OrderBy == "reference" {
		order = "reference ASC"
	}

	q := r.builder.Select(exitFormColumns...).From(exitFormsTable).
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
		return result, fmt.Errorf("list exit forms: %w", err)
	}

	if err := r.loadItems(ctx, result.Items); err != nil {
		return result, err
	}

	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

func (r *ExitFormRepo) ListByPeriod(ctx context.Context, start, end time.Time, status documents.Status) ([]*exitform.ExitForm, error) {
	q := r.builder.Select(exitFormColumns...).From(exitFormsTable).
		Where(squirrel.Eq{"deletion_mark": false, "status": status}).
		Where(squirrel.GtOrEq{"date": start}).
		Where(squirrel.LtOrEq{"date": end}).
		OrderBy("date ASC", "reference ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var forms []*exitform.ExitForm
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &forms, sql, args...); err != nil {
		return nil, fmt.Errorf("list exit forms by period: %w", err)
	}

	if err := r.loadItems(ctx, forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *ExitFormRepo) SetDeletionMark(ctx context.Context, formID id.ID, marked bool) error {
	q := r.builder.Update(exitFormsTable).
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
		return apperror.NewNotFound("exit form", formID.String())
	}
	return nil
}

func (r *ExitFormRepo) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	inner := r.builder.Select("1").From(exitFormsTable).
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
