package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/reports"
	"stockhouse/internal/domain/stock"
	"stockhouse/internal/storage/memory"
)

var (
	day1 = time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	store   *memory.Store
	service *reports.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	return &fixture{
		store:   store,
		service: reports.NewService(memory.NewReportRepo(store)),
	}
}

func (fx *fixture) seedCategoryProduct(t *testing.T, categoryName string, price float64) *product.Product {
	t.Helper()
	ctx := context.Background()

	cat := &category.Category{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        categoryName,
		Name:        categoryName,
	}
	require.NoError(t, memory.NewCategoryRepo(fx.store).Create(ctx, cat))

	p := &product.Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   categoryName + "-P",
		Name:        categoryName + " product",
		CategoryID:  cat.ID,
		UnitPrice:   types.NewMoney(price),
	}
	require.NoError(t, memory.NewProductRepo(fx.store).Create(ctx, p))
	return p
}

func (fx *fixture) seedMovement(t *testing.T, p *product.Product, mType stock.MovementType, qty int64, date time.Time) {
	t.Helper()

	err := memory.NewStockRepo(fx.store).AppendMovement(context.Background(), &stock.StockMovement{
		ID:           id.New(),
		ProductID:    p.ID,
		Type:         mType,
		Quantity:     qty,
		Reason:       "test",
		MovementDate: date,
		UserID:       id.New(),
		CreatedAt:    date,
	})
	require.NoError(t, err)
}

func (fx *fixture) seedCompletedEntry(t *testing.T, reference string, date time.Time, total float64) {
	t.Helper()

	f := &entryform.EntryForm{
		BaseDocument: entity.NewBaseDocument(),
		Reference:    reference,
		Date:         date,
		SupplierID:   id.New(),
		Status:       documents.StatusCompleted,
		UserID:       id.New(),
		Items: []*entryform.EntryItem{{
			ID:        id.New(),
			ProductID: id.New(),
			Quantity:  1,
			UnitPrice: types.NewMoney(total),
		}},
	}
	f.ComputeTotal()
	require.NoError(t, memory.NewEntryFormRepo(fx.store).Create(context.Background(), f))
}

func TestSummary(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	p := fx.seedCategoryProduct(t, "Stationery", 4.90)
	fx.seedCompletedEntry(t, "ENT-1", day1, 24.50)
	fx.seedMovement(t, p, stock.MovementEntry, 5, day1)
	fx.seedMovement(t, p, stock.MovementExit, 2, day2)

	summary, err := fx.service.Summary(ctx, day1.Add(-time.Hour), day2.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EntriesCount)
	assert.Zero(t, summary.ExitsCount)
	assert.True(t, summary.EntriesTotal.Equal(types.NewMoney(24.50)))
	assert.EqualValues(t, 5, summary.EntryQuantity)
	assert.EqualValues(t, 2, summary.ExitQuantity)
}

func TestSummary_EmptyRange(t *testing.T) {
	fx := newFixture(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	summary, err := fx.service.Summary(context.Background(), start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Zero(t, summary.EntriesCount)
	assert.Zero(t, summary.ExitsCount)
	assert.True(t, summary.EntriesTotal.IsZero())
	assert.True(t, summary.ExitsTotal.IsZero())
	assert.Zero(t, summary.EntryQuantity)
	assert.Zero(t, summary.ExitQuantity)
}

func TestSummary_Validation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Summary(ctx, day2, day1)
	assert.Error(t, err)

	_, err = fx.service.Summary(ctx, time.Time{}, day1)
	assert.Error(t, err)
}

func TestCategoryAnalysis(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	paper := fx.seedCategoryProduct(t, "Paper", 4.00)
	boxes := fx.seedCategoryProduct(t, "Boxes", 1.50)

	fx.seedMovement(t, paper, stock.MovementEntry, 10, day1)
	fx.seedMovement(t, boxes, stock.MovementEntry, 4, day1)
	fx.seedMovement(t, boxes, stock.MovementExit, 2, day2)

	rows, err := fx.service.CategoryAnalysis(ctx, day1.Add(-time.Hour), day2.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// ordered by category name
	assert.Equal(t, "Boxes", rows[0].CategoryName)
	assert.Equal(t, "Paper", rows[1].CategoryName)

	assert.EqualValues(t, 4, rows[0].EntryQuantity)
	assert.EqualValues(t, 2, rows[0].ExitQuantity)
	assert.True(t, rows[0].EntryValue.Equal(types.NewMoney(6.00)))
	assert.True(t, rows[0].ExitValue.Equal(types.NewMoney(3.00)))
	assert.True(t, rows[1].EntryValue.Equal(types.NewMoney(40.00)))
}

func TestCategoryAnalysis_Empty(t *testing.T) {
	fx := newFixture(t)

	rows, err := fx.service.CategoryAnalysis(context.Background(), day1, day2)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMovementSeries(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	p := fx.seedCategoryProduct(t, "Paper", 4.00)
	fx.seedMovement(t, p, stock.MovementEntry, 10, day1)
	fx.seedMovement(t, p, stock.MovementEntry, 3, day1.Add(2*time.Hour))
	fx.seedMovement(t, p, stock.MovementExit, 2, day2)

	points, err := fx.service.MovementSeries(ctx, day1.Add(-time.Hour), day2.Add(time.Hour), reports.BucketDay)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, day1.Truncate(24*time.Hour), points[0].Day)
	assert.EqualValues(t, 13, points[0].EntryQuantity)
	assert.Zero(t, points[0].ExitQuantity)
	assert.EqualValues(t, 2, points[1].ExitQuantity)
}

func TestMovementSeries_UnsupportedBucket(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.MovementSeries(context.Background(), day1, day2, "week")
	assert.Error(t, err)
}
