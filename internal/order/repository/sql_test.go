package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/order/repository"
	"github.com/fekuna/omnipos-assistant-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAtomic_CommitsOrderAndDecrementsStock(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	laptop := testutil.SeedProduct(t, db, "Laptop", "1200.00", 5, 1)
	mouse := testutil.SeedProduct(t, db, "Mouse", "25.50", 10, 2)
	customer := testutil.SeedCustomer(t, db, "Ana Lopez")

	receipt, err := repo.CreateAtomic(ctx, &dto.CreateOrderInput{
		CustomerID:    customer,
		PaymentMethod: "card",
		Lines: []dto.LineRequest{
			{ProductID: mouse, Quantity: 4},
			{ProductID: laptop, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, receipt.Order.Status)
	assert.Equal(t, "Ana Lopez", receipt.Order.CustomerName)
	assert.True(t, decimal.RequireFromString("2502.00").Equal(receipt.Order.TotalAmount))
	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, mouse, receipt.Lines[0].ProductID)
	assert.Equal(t, 10, receipt.Lines[0].StockBefore)
	assert.Equal(t, 6, receipt.Lines[0].StockAfter)
	assert.Equal(t, 3, receipt.Lines[1].StockAfter)

	assert.Equal(t, 3, testutil.StockOf(t, db, laptop))
	assert.Equal(t, 6, testutil.StockOf(t, db, mouse))

	var sales int
	require.NoError(t, db.Get(&sales, `SELECT count(*) FROM inventory_movements WHERE movement_type = 'sale'`))
	assert.Equal(t, 2, sales)

	stored, err := repo.FindByID(ctx, receipt.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Lines, 2)
	assert.True(t, receipt.Order.TotalAmount.Equal(stored.TotalAmount))
}

func TestCreateAtomic_ShortLineRollsBackEverything(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)

	laptop := testutil.SeedProduct(t, db, "Laptop", "1200.00", 5, 1)
	mouse := testutil.SeedProduct(t, db, "Mouse", "25.50", 1, 2)
	customer := testutil.SeedCustomer(t, db, "Ana Lopez")

	_, err := repo.CreateAtomic(context.Background(), &dto.CreateOrderInput{
		CustomerID:    customer,
		PaymentMethod: "card",
		Lines: []dto.LineRequest{
			{ProductID: laptop, Quantity: 2},
			{ProductID: mouse, Quantity: 3},
		},
	})
	require.Error(t, err)

	var lineErrs *apperr.LineErrors
	require.True(t, errors.As(err, &lineErrs))
	require.Len(t, lineErrs.Errors, 1)

	var short *apperr.InsufficientStockError
	require.True(t, errors.As(lineErrs.Errors[0], &short))
	assert.Equal(t, "Mouse", short.Product)
	assert.Equal(t, 1, short.Available)
	assert.Equal(t, 3, short.Requested)

	assert.Equal(t, 5, testutil.StockOf(t, db, laptop))
	assert.Equal(t, 1, testutil.StockOf(t, db, mouse))

	var orders int
	require.NoError(t, db.Get(&orders, `SELECT count(*) FROM orders`))
	assert.Zero(t, orders)
}

func TestCreateAtomic_ReportsEveryFailingLineInRequestOrder(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)

	mouse := testutil.SeedProduct(t, db, "Mouse", "25.50", 1, 2)
	customer := testutil.SeedCustomer(t, db, "Ana Lopez")

	_, err := repo.CreateAtomic(context.Background(), &dto.CreateOrderInput{
		CustomerID: customer,
		Lines: []dto.LineRequest{
			{ProductID: 999, Quantity: 1},
			{ProductID: mouse, Quantity: 2},
		},
	})
	var lineErrs *apperr.LineErrors
	require.True(t, errors.As(err, &lineErrs))
	require.Len(t, lineErrs.Errors, 2)

	var missing *apperr.NotFoundError
	assert.True(t, errors.As(lineErrs.Errors[0], &missing))
	var short *apperr.InsufficientStockError
	assert.True(t, errors.As(lineErrs.Errors[1], &short))
}

func TestCreateAtomic_Validation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	mouse := testutil.SeedProduct(t, db, "Mouse", "25.50", 1, 2)
	customer := testutil.SeedCustomer(t, db, "Ana Lopez")

	tests := []struct {
		name  string
		input *dto.CreateOrderInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "no lines",
			input: &dto.CreateOrderInput{CustomerID: customer},
			check: func(t *testing.T, err error) {
				var v *apperr.ValidationError
				assert.True(t, errors.As(err, &v))
			},
		},
		{
			name:  "zero quantity",
			input: &dto.CreateOrderInput{CustomerID: customer, Lines: []dto.LineRequest{{ProductID: mouse}}},
			check: func(t *testing.T, err error) {
				var v *apperr.ValidationError
				assert.True(t, errors.As(err, &v))
			},
		},
		{
			name:  "unknown customer",
			input: &dto.CreateOrderInput{CustomerID: 77, Lines: []dto.LineRequest{{ProductID: mouse, Quantity: 1}}},
			check: func(t *testing.T, err error) {
				var nf *apperr.NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, "customer", nf.Entity)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateAtomic(context.Background(), tt.input)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCreateAtomic_ConcurrentOrdersNeverOversell(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)

	widget := testutil.SeedProduct(t, db, "Widget", "10.00", 5, 1)
	customer := testutil.SeedCustomer(t, db, "Ana Lopez")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateAtomic(context.Background(), &dto.CreateOrderInput{
				CustomerID: customer,
				Lines:      []dto.LineRequest{{ProductID: widget, Quantity: 2}},
			})
			if err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, committed)
	assert.Equal(t, 1, testutil.StockOf(t, db, widget))
}

func TestUpdateStatus(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	widget := testutil.SeedProduct(t, db, "Widget", "10.00", 5, 1)
	customer := testutil.SeedCustomer(t, db, "Ana Lopez")

	receipt, err := repo.CreateAtomic(ctx, &dto.CreateOrderInput{
		CustomerID: customer,
		Lines:      []dto.LineRequest{{ProductID: widget, Quantity: 3}},
	})
	require.NoError(t, err)
	id := receipt.Order.ID

	t.Run("rejects skipping ahead", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, id, model.OrderShipped)
		var v *apperr.ValidationError
		assert.True(t, errors.As(err, &v))
	})

	t.Run("confirms", func(t *testing.T) {
		o, err := repo.UpdateStatus(ctx, id, model.OrderConfirmed)
		require.NoError(t, err)
		assert.Equal(t, model.OrderConfirmed, o.Status)
	})

	t.Run("cancel restocks", func(t *testing.T) {
		o, err := repo.UpdateStatus(ctx, id, model.OrderCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, o.Status)
		assert.Equal(t, 5, testutil.StockOf(t, db, widget))

		var returns int
		require.NoError(t, db.Get(&returns, `SELECT count(*) FROM inventory_movements WHERE movement_type = 'return'`))
		assert.Equal(t, 1, returns)
	})

	t.Run("terminal orders stay put", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, id, model.OrderConfirmed)
		assert.Error(t, err)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, 404, model.OrderConfirmed)
		var nf *apperr.NotFoundError
		assert.True(t, errors.As(err, &nf))
	})
}

func TestFindAll_Filters(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	widget := testutil.SeedProduct(t, db, "Widget", "10.00", 50, 1)
	ana := testutil.SeedCustomer(t, db, "Ana Lopez")
	bob := testutil.SeedCustomer(t, db, "Bob Stone")

	for _, c := range []int64{ana, ana, bob} {
		_, err := repo.CreateAtomic(ctx, &dto.CreateOrderInput{
			CustomerID: c,
			Lines:      []dto.LineRequest{{ProductID: widget, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, o := range all {
		assert.Len(t, o.Lines, 1)
		assert.Equal(t, "Widget", o.Lines[0].ProductName)
	}

	anas, err := repo.FindAll(ctx, &dto.OrderFilters{CustomerID: ana})
	require.NoError(t, err)
	assert.Len(t, anas, 2)

	limited, err := repo.FindAll(ctx, &dto.OrderFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
