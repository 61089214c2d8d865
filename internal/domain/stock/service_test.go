package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/stock"
	"stockhouse/internal/storage/memory"
)

func newService(t *testing.T) (*stock.Service, id.ID) {
	t.Helper()

	store := memory.NewStore()
	p := &product.Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   "PAP-A4",
		Name:        "A4 Copy Paper",
		CategoryID:  id.New(),
		UnitPrice:   types.NewMoney(4.90),
		Quantity:    10,
	}
	require.NoError(t, memory.NewProductRepo(store).Create(context.Background(), p))

	return stock.NewService(memory.NewStockRepo(store)), p.ID
}

func TestAdjust(t *testing.T) {
	svc, productID := newService(t)
	ctx := context.Background()

	p, err := svc.Adjust(ctx, productID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 15, p.Quantity)

	p, err = svc.Adjust(ctx, productID, -15)
	require.NoError(t, err)
	assert.Zero(t, p.Quantity)
}

func TestAdjust_NeverNegative(t *testing.T) {
	svc, productID := newService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, productID, -11)
	assert.True(t, apperror.IsInsufficientStock(err))

	// the failed adjustment changed nothing
	p, err := svc.Adjust(ctx, productID, -10)
	require.NoError(t, err)
	assert.Zero(t, p.Quantity)
}

func TestAdjust_Validation(t *testing.T) {
	svc, productID := newService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, productID, 0)
	assert.Error(t, err)

	_, err = svc.Adjust(ctx, id.Nil(), 1)
	assert.Error(t, err)

	_, err = svc.Adjust(ctx, id.New(), 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordAndSignedTotal(t *testing.T) {
	svc, productID := newService(t)
	ctx := context.Background()
	userID := id.New()
	date := time.Now().UTC()

	_, err := svc.Record(ctx, stock.MovementInput{
		ProductID:    productID,
		Type:         stock.MovementEntry,
		Quantity:     8,
		Reason:       "entry form validated",
		MovementDate: date,
		UserID:       userID,
	})
	require.NoError(t, err)

	_, err = svc.Record(ctx, stock.MovementInput{
		ProductID:    productID,
		Type:         stock.MovementExit,
		Quantity:     3,
		Reason:       "exit form validated",
		MovementDate: date,
		UserID:       userID,
	})
	require.NoError(t, err)

	total, err := svc.SignedTotal(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	movements, err := svc.MovementsByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestRecord_Validation(t *testing.T) {
	svc, productID := newService(t)
	ctx := context.Background()

	valid := stock.MovementInput{
		ProductID:    productID,
		Type:         stock.MovementEntry,
		Quantity:     1,
		Reason:       "test",
		MovementDate: time.Now().UTC(),
		UserID:       id.New(),
	}

	tests := []struct {
		name   string
		mutate func(in *stock.MovementInput)
	}{
		{"nil product", func(in *stock.MovementInput) { in.ProductID = id.Nil() }},
		{"bad type", func(in *stock.MovementInput) { in.Type = "transfer" }},
		{"zero quantity", func(in *stock.MovementInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *stock.MovementInput) { in.Quantity = -1 }},
		{"empty reason", func(in *stock.MovementInput) { in.Reason = "" }},
		{"zero date", func(in *stock.MovementInput) { in.MovementDate = time.Time{} }},
		{"nil user", func(in *stock.MovementInput) { in.UserID = id.Nil() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Record(ctx, in)
			assert.Error(t, err)
		})
	}
}
