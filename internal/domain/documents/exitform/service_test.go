package exitform_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/exitform"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/domain/stock"
	"stockhouse/internal/storage/memory"
	"stockhouse/pkg/refseq"
)

type fixture struct {
	service  *exitform.Service
	stock    *stock.Service
	products *memory.ProductRepo
	forms    *memory.ExitFormRepo

	userID    id.ID
	productID id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)

	products := memory.NewProductRepo(store)
	forms := memory.NewExitFormRepo(store)

	stockSvc := stock.NewService(memory.NewStockRepo(store))
	historySvc, err := history.NewService(memory.NewHistoryRepo(store))
	require.NoError(t, err)
	detector, err := duplicate.NewDetector(memory.NewDuplicateRepo(store), duplicate.DefaultPolicy())
	require.NoError(t, err)
	refs := refseq.New(memory.NewSeqStore(store))

	service := exitform.NewService(forms, products, stockSvc, historySvc, detector, refs, txm)

	p := &product.Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   "BOX-M",
		Name:        "Shipping Box Medium",
		CategoryID:  id.New(),
		UnitPrice:   types.NewMoney(1.15),
		Quantity:    10,
	}
	require.NoError(t, products.Create(context.Background(), p))

	return &fixture{
		service:   service,
		stock:     stockSvc,
		products:  products,
		forms:     forms,
		userID:    id.New(),
		productID: p.ID,
	}
}

func (fx *fixture) createDraft(t *testing.T, qty int64) *exitform.ExitForm {
	t.Helper()

	result, err := fx.service.Create(context.Background(), fx.userID, exitform.CreateInput{
		Date:        yesterday(),
		Destination: "workshop B",
		Items:       []exitform.ItemInput{{ProductID: fx.productID, Quantity: qty}},
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

	result, err := fx.service.Create(ctx, fx.userID, exitform.CreateInput{
		Date:        yesterday(),
		Destination: "workshop B",
		Reason:      "internal consumption",
		Items:       []exitform.ItemInput{{ProductID: fx.productID, Quantity: 4}},
	})
	require.NoError(t, err)

	form := result.Form
	assert.Equal(t, documents.StatusDraft, form.Status)
	assert.True(t, strings.HasPrefix(form.Reference, "EXT-"))

	// line valued at the current catalog price
	require.Len(t, form.Items, 1)
	assert.True(t, form.Total.Equal(types.NewMoney(4.60)))

	// creation reserves nothing
	assert.EqualValues(t, 10, fx.quantity(t))
}

func TestCreate_MissingDestination(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Create(context.Background(), fx.userID, exitform.CreateInput{
		Date:  yesterday(),
		Items: []exitform.ItemInput{{ProductID: fx.productID, Quantity: 1}},
	})
	require.Error(t, err)
}

func TestValidate_DecrementsStock(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 4)

	validated, err := fx.service.Validate(ctx, fx.userID, form.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCompleted, validated.Status)
	assert.EqualValues(t, 6, fx.quantity(t))

	movements, err := fx.stock.MovementsByProduct(ctx, fx.productID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, stock.MovementExit, movements[0].Type)

	total, err := fx.stock.SignedTotal(ctx, fx.productID)
	require.NoError(t, err)
	assert.EqualValues(t, -4, total)
}

func TestValidate_InsufficientStock(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 25)

	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	assert.True(t, apperror.IsInsufficientStock(err))

	// nothing happened: still a draft, stock and ledger untouched
	current, err := fx.service.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusDraft, current.Status)
	assert.EqualValues(t, 10, fx.quantity(t))

	movements, err := fx.stock.MovementsByProduct(ctx, fx.productID)
	require.NoError(t, err)
	assert.Empty(t, movements)

	entries, err := fx.service.History(ctx, form.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the creation row survives")
}

func TestValidate_PartialFailureRollsBackAllLines(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	scarce := &product.Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   "TAPE-50",
		Name:        "Packing Tape",
		CategoryID:  id.New(),
		UnitPrice:   types.NewMoney(1.80),
		Quantity:    1,
	}
	require.NoError(t, fx.products.Create(ctx, scarce))

	result, err := fx.service.Create(ctx, fx.userID, exitform.CreateInput{
		Date:        yesterday(),
		Destination: "workshop B",
		Items: []exitform.ItemInput{
			{ProductID: fx.productID, Quantity: 4},
			{ProductID: scarce.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	_, err = fx.service.Validate(ctx, fx.userID, result.Form.ID, "")
	assert.True(t, apperror.IsInsufficientStock(err))

	// the first line's decrement was rolled back with the rest
	assert.EqualValues(t, 10, fx.quantity(t))
}

func TestCancel_Completed_RestoresStock(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 4)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)
	require.EqualValues(t, 6, fx.quantity(t))

	cancelled, err := fx.service.Cancel(ctx, fx.userID, form.ID, "shipment refused")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCancelled, cancelled.Status)
	assert.EqualValues(t, 10, fx.quantity(t))

	total, err := fx.stock.SignedTotal(ctx, fx.productID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCancel_Pending(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 4)

	// pending is set by external approval flows, never by this engine
	form.Status = documents.StatusPending
	require.NoError(t, fx.forms.Update(ctx, form))

	cancelled, err := fx.service.Cancel(ctx, fx.userID, form.ID, "approval withdrawn")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCancelled, cancelled.Status)

	// a pending form has no stock effect to reverse
	assert.EqualValues(t, 10, fx.quantity(t))
}

func TestUpdate_RecordsFieldHistory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 4)

	_, err := fx.service.Update(ctx, fx.userID, form.ID, exitform.UpdateInput{
		Date:        form.Date,
		Destination: "workshop C",
		Reason:      "rerouted",
		Items:       []exitform.ItemInput{{ProductID: fx.productID, Quantity: 2}},
	})
	require.NoError(t, err)

	entries, err := fx.service.History(ctx, form.ID)
	require.NoError(t, err)

	fields := make(map[string]bool)
	for _, e := range entries {
		fields[e.Field] = true
	}
	assert.True(t, fields["destination"])
	assert.False(t, fields["date"], "unchanged date must not produce a history row")
}

func TestGetByPeriod(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 4)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	start := yesterday().Add(-24 * time.Hour)
	summary, err := fx.service.GetByPeriod(ctx, start, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ExitsCount)
	assert.True(t, summary.TotalAmount.Equal(types.NewMoney(4.60)))
}

func TestCheckDuplicates_SameDestinationSameDay(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	form := fx.createDraft(t, 4)
	_, err := fx.service.Validate(ctx, fx.userID, form.ID, "")
	require.NoError(t, err)

	candidates, err := fx.service.CheckDuplicates(ctx, duplicate.Query{
		Destination: "workshop B",
		Date:        yesterday(),
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, form.ID, candidates[0].DocumentID)

	// a different counterparty never matches
	candidates, err = fx.service.CheckDuplicates(ctx, duplicate.Query{
		Destination: "workshop Z",
		Date:        yesterday(),
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
