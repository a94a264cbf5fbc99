package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
	orderRepo "github.com/fekuna/omnipos-assistant-service/internal/order/repository"
	productDTO "github.com/fekuna/omnipos-assistant-service/internal/product/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/product/repository"
	"github.com/fekuna/omnipos-assistant-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name, sku, price string) (*model.Product, *model.InventoryRecord) {
	now := time.Now()
	p := &model.Product{SKU: sku, Name: name, Price: decimal.RequireFromString(price), Category: "Other"}
	p.CreatedAt, p.UpdatedAt = now, now
	return p, &model.InventoryRecord{Quantity: 7, MinThreshold: 2, MaxThreshold: 14, Location: "Main Warehouse", UpdatedAt: now}
}

func TestCreate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	p, inv := newProduct("Desk", "SKU-DESK", "120.00")
	require.NoError(t, repo.Create(ctx, p, inv))
	assert.NotZero(t, p.ID)
	assert.Equal(t, p.ID, inv.ProductID)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Desk", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.True(t, decimal.RequireFromString("120").Equal(got.Price))

	var initial int
	require.NoError(t, db.Get(&initial, `SELECT quantity_after FROM inventory_movements WHERE movement_type = 'initial'`))
	assert.Equal(t, 7, initial)

	missing, err := repo.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateConflicts(t *testing.T) {
	tests := []struct {
		name  string
		pname string
		sku   string
		field string
	}{
		{"same name other case", "DESK", "SKU-OTHER", "name"},
		{"same name with accents", "Désk", "SKU-OTHER", "name"},
		{"same sku", "Table", "SKU-DESK", "sku"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			repo := repository.NewSQLRepository(db)
			ctx := context.Background()

			p, inv := newProduct("Desk", "SKU-DESK", "120.00")
			require.NoError(t, repo.Create(ctx, p, inv))

			dup, dupInv := newProduct(tt.pname, tt.sku, "1.00")
			err := repo.Create(ctx, dup, dupInv)

			var conflict *apperr.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.field, conflict.Field)

			var count int
			require.NoError(t, db.Get(&count, `SELECT count(*) FROM inventory`))
			assert.Equal(t, 1, count)
		})
	}
}

func TestFindAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "Laptop", "800.00", 10, 2)
	testutil.SeedProduct(t, db, "Laptop Bag", "40.00", 3, 2)
	testutil.SeedProduct(t, db, "Mouse", "20.00", 0, 2)

	tests := []struct {
		name    string
		filters *productDTO.ProductFilters
		want    []string
		total   int
	}{
		{"all by id", nil, []string{"Laptop", "Laptop Bag", "Mouse"}, 3},
		{"search", &productDTO.ProductFilters{SearchQuery: "LAPTOP"}, []string{"Laptop", "Laptop Bag"}, 2},
		{"low stock", &productDTO.ProductFilters{LowStock: true}, []string{"Laptop Bag", "Mouse"}, 2},
		{"price desc", &productDTO.ProductFilters{SortBy: "price", SortOrder: "desc"}, []string{"Laptop", "Laptop Bag", "Mouse"}, 3},
		{"second page", &productDTO.ProductFilters{SortBy: "name", Page: 2, PageSize: 2}, []string{"Mouse"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.FindAll(ctx, tt.filters)
			require.NoError(t, err)
			names := make([]string, len(items))
			for i, p := range items {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestFindAll_SearchIsLiteral(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "Cotton 100% Tee", "15.00", 5, 1)
	testutil.SeedProduct(t, db, "Cotton 1000 Tee", "15.00", 5, 1)
	testutil.SeedProduct(t, db, "USB_C Cable", "9.00", 5, 1)
	testutil.SeedProduct(t, db, "USBXC Cable", "9.00", 5, 1)
	testutil.SeedProduct(t, db, `Rack 1\2`, "50.00", 5, 1)

	tests := []struct {
		search string
		want   []string
	}{
		{"100%", []string{"Cotton 100% Tee"}},
		{"usb_c", []string{"USB_C Cable"}},
		{`1\2`, []string{`Rack 1\2`}},
		{"%", []string{"Cotton 100% Tee"}},
		{"cable", []string{"USB_C Cable", "USBXC Cable"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			items, total, err := repo.FindAll(ctx, &productDTO.ProductFilters{SearchQuery: tt.search})
			require.NoError(t, err)
			names := make([]string, len(items))
			for i, p := range items {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	orders := orderRepo.NewSQLRepository(db)
	ctx := context.Background()

	laptop := testutil.SeedProduct(t, db, "Laptop", "800.00", 10, 2)
	mouse := testutil.SeedProduct(t, db, "Mouse", "20.00", 10, 2)
	spare := testutil.SeedProduct(t, db, "Cable", "5.00", 10, 2)
	customer := testutil.SeedCustomer(t, db, "Ana")

	_, err := orders.CreateAtomic(ctx, &dto.CreateOrderInput{
		CustomerID: customer, PaymentMethod: "card",
		Lines: []dto.LineRequest{{ProductID: laptop, Quantity: 1}, {ProductID: mouse, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = orders.CreateAtomic(ctx, &dto.CreateOrderInput{
		CustomerID: customer, PaymentMethod: "card",
		Lines: []dto.LineRequest{{ProductID: mouse, Quantity: 2}},
	})
	require.NoError(t, err)

	t.Run("unreferenced", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, spare, false))
		got, err := repo.FindByID(ctx, spare)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing", func(t *testing.T) {
		var notFound *apperr.NotFoundError
		assert.ErrorAs(t, repo.Delete(ctx, 999, false), &notFound)
	})

	t.Run("referenced without cascade", func(t *testing.T) {
		var conflict *apperr.ConflictError
		require.ErrorAs(t, repo.Delete(ctx, laptop, false), &conflict)
		assert.Equal(t, "orders", conflict.Field)
	})

	t.Run("cascade removes whole orders", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, laptop, true))

		var orderCount, itemCount int
		require.NoError(t, db.Get(&orderCount, `SELECT count(*) FROM orders`))
		require.NoError(t, db.Get(&itemCount, `SELECT count(*) FROM order_items`))
		// the mouse-only order survives with its single line
		assert.Equal(t, 1, orderCount)
		assert.Equal(t, 1, itemCount)
	})
}

func TestUpdateAndSKUUniqueness(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	ctx := context.Background()

	id := testutil.SeedProduct(t, db, "Laptop", "800.00", 10, 2)
	testutil.SeedProduct(t, db, "Mouse", "20.00", 10, 2)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	got.Price = decimal.RequireFromString("750.00")
	got.UpdatedAt = time.Now()
	require.NoError(t, repo.Update(ctx, &got.Product))

	again, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "750.00", again.Price.StringFixed(2))

	for _, name := range []string{"mouse", "Móuse"} {
		got.Name = name
		var conflict *apperr.ConflictError
		require.ErrorAs(t, repo.Update(ctx, &got.Product), &conflict, name)
		assert.Equal(t, "name", conflict.Field)
	}

	unique, err := repo.IsSKUUnique(ctx, "sku-laptop", 0)
	require.NoError(t, err)
	assert.False(t, unique)
	unique, err = repo.IsSKUUnique(ctx, "sku-laptop", id)
	require.NoError(t, err)
	assert.True(t, unique)
}
