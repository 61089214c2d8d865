package entryform_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/catalogs/supplier"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/domain/stock"
	"stockhouse/internal/storage/memory"
	"stockhouse/pkg/refseq"
)

type fixture struct {
	service  *entryform.Service
	stock    *stock.Service
	products *memory.ProductRepo
	forms    *memory.EntryFormRepo

	userID     id.ID
	supplierID id.ID
	productID  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)

	products := memory.NewProductRepo(store)
	suppliers := memory.NewSupplierRepo(store)
	forms := memory.NewEntryFormRepo(store)

	stockSvc := stock.NewService(memory.NewStockRepo(store))
	historySvc, err := history.NewService(memory.NewHistoryRepo(store))
	require.NoError(t, err)
	detector, err := duplicate.NewDetector(memory.NewDuplicateRepo(store), duplicate.DefaultPolicy())
	require.NoError(t, err)
	refs := refseq.New(memory.NewSeqStore(store))

	service := entryform.NewService(forms, products, suppliers, stockSvc, historySvc, detector, refs, txm)

	ctx := context.Background()

	sup := &supplier.Supplier{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        "SUP-001",
		Name:        "Paper Trail Ltd",
	}
	require.NoError(t, suppliers.Create(ctx, sup))

	p := &product.Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   "PAP-A4",
		Name:        "A4 Copy Paper",
		CategoryID:  id.New(),
		UnitPrice:   types.NewMoney(4.90),
		Quantity:    10,
	}
	require.NoError(t, products.Create(ctx, p))

	return &fixture{
		service:    service,
		stock:      stockSvc,
		products:   products,
		forms:      forms,
		userID:     id.New(),
		supplierID: sup.ID,
		productID:  p.ID,
	}
}

func (fx *fixture) createDraft(t *testing.T) *entryform.EntryForm {
	t.Helper()

	result, err := fx.service.Create(context.Background(), fx.userID, entryform.CreateInput{
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 5}},
	})
	require.NoError(t, err)
	return result.Form
}

func (fx *fixture) quantity(t *testing.T) int64 {
	t.Helper()

	p, err := fx.products.GetByID(context.Background(), fx.productID)
	require.NoError(t, err)
	return p.Quantity
}

func yesterday() time.Time {
	return time.Now().UTC().Add(-24 * time.Hour)
}

func TestCreate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.Create(ctx, fx.userID, entryform.CreateInput{
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Notes:      "first delivery",
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 5}},
	})
	require.NoError(t, err)

	form := result.Form
	assert.Equal(t, documents.StatusDraft, form.Status)
	assert.Equal(t, fx.userID, form.UserID)

	wantRef := fmt.Sprintf("ENT-%s-0001", yesterday().Format("20060102"))
	assert.Equal(t, wantRef, form.Reference)

	// price snapshotted from the catalog
	require.Len(t, form.Items, 1)
	assert.True(t, form.Items[0].UnitPrice.Equal(types.NewMoney(4.90)))
	assert.True(t, form.Total.Equal(types.NewMoney(24.50)))

	// creation leaves stock untouched
	assert.EqualValues(t, 10, fx.quantity(t))

	entries, err := fx.service.History(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].Field)
	assert.Nil(t, entries[0].OldValue)
	assert.Equal(t, "draft", *entries[0].NewValue)
}

func TestCreate_PriceOverride(t *testing.T) {
	fx := newFixture(t)

	price := types.NewMoney(3.10)
	result, err := fx.service.Create(context.Background(), fx.userID, entryform.CreateInput{
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 2, UnitPrice: &price}},
	})
	require.NoError(t, err)
	assert.True(t, result.Form.Items[0].UnitPrice.Equal(price))
	assert.True(t, result.Form.Total.Equal(types.NewMoney(6.20)))
}

func TestCreate_FutureDate(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Create(context.Background(), fx.userID, entryform.CreateInput{
		Date:       time.Now().UTC().Add(48 * time.Hour),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidDate, appErr.Code)
}

func TestCreate_DuplicateReference(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Create(ctx, fx.userID, entryform.CreateInput{
		Reference:  "ENT-CUSTOM-1",
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = fx.service.Create(ctx, fx.userID, entryform.CreateInput{
		Reference:  "ENT-CUSTOM-1",
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicateReference, appErr.Code)
}

func TestCreate_UnknownSupplier(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Create(context.Background(), fx.userID, entryform.CreateInput{
		Date:       yesterday(),
		SupplierID: id.New(),
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 1}},
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_ReportsDuplicateCandidates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, first.ID, "")
	require.NoError(t, err)

	// same supplier, same day: the completed form is an advisory candidate
	result, err := fx.service.Create(ctx, fx.userID, entryform.CreateInput{
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, first.ID, result.Duplicates[0].DocumentID)
	assert.Equal(t, documents.StatusDraft, result.Form.Status)
}

func TestValidate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)

	validated, err := fx.service.Validate(ctx, fx.userID, form.ID, "goods received")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCompleted, validated.Status)

	// +5 on a starting quantity of 10
	assert.EqualValues(t, 15, fx.quantity(t))

	movements, err := fx.stock.MovementsByProduct(ctx, fx.productID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, stock.MovementEntry, movements[0].Type)
	assert.EqualValues(t, 5, movements[0].Quantity)

	total, err := fx.stock.SignedTotal(ctx, fx.productID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	entries, err := fx.service.History(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "status", entries[0].Field)
	assert.Equal(t, "draft", *entries[0].OldValue)
	assert.Equal(t, "completed", *entries[0].NewValue)
	assert.Equal(t, "goods received", entries[0].Reason)
	assert.NotEmpty(t, entries[0].Snapshot)
}

func TestValidate_Twice(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	_, err = fx.service.Validate(ctx, fx.userID, form.ID, "")
	assert.True(t, apperror.IsInvalidTransition(err))

	// stock applied exactly once
	assert.EqualValues(t, 15, fx.quantity(t))
}

func TestCancel_Draft(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	cancelled, err := fx.service.Cancel(ctx, fx.userID, form.ID, "entered by mistake")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCancelled, cancelled.Status)

	// a draft never touched stock, so neither does its cancellation
	assert.EqualValues(t, 10, fx.quantity(t))

	movements, err := fx.stock.MovementsByProduct(ctx, fx.productID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestCancel_Completed_ReversesStock(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)
	require.EqualValues(t, 15, fx.quantity(t))

	cancelled, err := fx.service.Cancel(ctx, fx.userID, form.ID, "wrong supplier")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCancelled, cancelled.Status)
	assert.EqualValues(t, 10, fx.quantity(t))

	movements, err := fx.stock.MovementsByProduct(ctx, fx.productID)
	require.NoError(t, err)
	require.Len(t, movements, 2)

	total, err := fx.stock.SignedTotal(ctx, fx.productID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCancel_Completed_InsufficientStockAborts(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	// drain the stock below what the reversal needs
	_, err = fx.stock.Adjust(ctx, fx.productID, -12)
	require.NoError(t, err)

	_, err = fx.service.Cancel(ctx, fx.userID, form.ID, "")
	assert.True(t, apperror.IsInsufficientStock(err))

	// the whole cancellation rolled back: status and stock are unchanged
	current, err := fx.service.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCompleted, current.Status)
	assert.EqualValues(t, 3, fx.quantity(t))
}

func TestCancel_FromCancelled(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	_, err := fx.service.Cancel(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	_, err = fx.service.Cancel(ctx, fx.userID, form.ID, "")
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestUpdate_RecordsFieldHistory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)

	newDate := yesterday().Add(-24 * time.Hour)
	updated, err := fx.service.Update(ctx, fx.userID, form.ID, entryform.UpdateInput{
		Date:       newDate,
		SupplierID: fx.supplierID,
		Notes:      "corrected delivery slip",
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 8}},
	})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(types.NewMoney(39.20)))

	entries, err := fx.service.History(ctx, form.ID)
	require.NoError(t, err)

	fields := make(map[string]bool)
	for _, e := range entries {
		fields[e.Field] = true
	}
	assert.True(t, fields["date"])
	assert.True(t, fields["notes"])
	assert.False(t, fields["supplier_id"], "unchanged supplier must not produce a history row")
}

func TestUpdate_CompletedRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	_, err = fx.service.Update(ctx, fx.userID, form.ID, entryform.UpdateInput{
		Date:       yesterday(),
		SupplierID: fx.supplierID,
		Items:      []entryform.ItemInput{{ProductID: fx.productID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestDelete_Draft(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	require.NoError(t, fx.service.Delete(ctx, fx.userID, form.ID))

	list, err := fx.service.List(ctx, entryform.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	entries, err := fx.service.History(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "deletion_mark", entries[0].Field)
}

func TestDelete_CompletedRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	err = fx.service.Delete(ctx, fx.userID, form.ID)
	require.Error(t, err)
}

func TestGetByPeriod(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	completed := fx.createDraft(t)
	_, err := fx.service.Validate(ctx, fx.userID, completed.ID, "")
	require.NoError(t, err)

	// drafts are excluded from the period summary
	fx.createDraft(t)

	start := yesterday().Add(-24 * time.Hour)
	end := time.Now().UTC()

	summary, err := fx.service.GetByPeriod(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EntriesCount)
	assert.True(t, summary.TotalAmount.Equal(types.NewMoney(24.50)))
	require.Len(t, summary.Forms, 1)
	assert.Equal(t, completed.ID, summary.Forms[0].ID)
}

func TestGetByPeriod_EmptyRange(t *testing.T) {
	fx := newFixture(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	summary, err := fx.service.GetByPeriod(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, summary.EntriesCount)
	assert.True(t, summary.TotalAmount.IsZero())
}

func TestGetByPeriod_InvertedRange(t *testing.T) {
	fx := newFixture(t)

	end := time.Now().UTC()
	_, err := fx.service.GetByPeriod(context.Background(), end, end.Add(-time.Hour))
	require.Error(t, err)
}

func TestIsValidDate(t *testing.T) {
	now := time.Now().UTC()

	assert.True(t, entryform.IsValidDate(now))
	assert.True(t, entryform.IsValidDate(now.Add(-365*24*time.Hour)))
	assert.False(t, entryform.IsValidDate(now.Add(48*time.Hour)))
}
