package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	invRepo "github.com/fekuna/omnipos-assistant-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/product"
	"github.com/fekuna/omnipos-assistant-service/internal/product/dto"
	prodRepo "github.com/fekuna/omnipos-assistant-service/internal/product/repository"
	"github.com/fekuna/omnipos-assistant-service/internal/product/usecase"
	"github.com/fekuna/omnipos-assistant-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(t *testing.T) (product.UseCase, *sqlx.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	uc := usecase.NewProductUseCase(prodRepo.NewSQLRepository(db), invRepo.NewSQLRepository(db), time.Second, logger.NewNop())
	return uc, db
}

func TestCreateProduct_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		qty     int
		wantMin int
		wantMax int
	}{
		{"small stock keeps the floor", 10, 5, 20},
		{"large stock uses a fifth", 100, 20, 200},
		{"empty stock", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newUseCase(t)
			p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
				Name:     "Laptop",
				Price:    decimal.RequireFromString("800"),
				Quantity: tt.qty,
				Category: "electrónicos",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, p.MinThreshold)
			assert.Equal(t, tt.wantMax, p.MaxThreshold)
			assert.Equal(t, "Electronics", p.Category)
			assert.Equal(t, usecase.DefaultLocation, p.Location)
			assert.Regexp(t, `^SKU-\d{14}-[0-9A-F]{8}$`, p.SKU)
			assert.Equal(t, "Producto Laptop", p.Description)
		})
	}
}

func TestCreateProduct_Rejects(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	_, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "laptop", SKU: "LAP-1", Price: decimal.NewFromInt(700), Quantity: 2})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input *dto.CreateProductInput
		field string
	}{
		{"name differs only in case", &dto.CreateProductInput{Name: "Laptop", Price: decimal.NewFromInt(800), Quantity: 1}, "name"},
		{"name differs only in accents", &dto.CreateProductInput{Name: "Láptop", Price: decimal.NewFromInt(800), Quantity: 1}, "name"},
		{"same sku", &dto.CreateProductInput{Name: "Tablet", SKU: "lap-1", Price: decimal.NewFromInt(300), Quantity: 1}, "sku"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateProduct(ctx, tt.input)
			var conflict *apperr.ConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, tt.field, conflict.Field)
			assert.Equal(t, "laptop", conflict.ExistingName)
		})
	}

	var count int
	require.NoError(t, db.Get(&count, `SELECT count(*) FROM products`))
	assert.Equal(t, 1, count)

	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Free", Price: decimal.Zero, Quantity: 1})
	var v *apperr.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "price", v.Field)
}

// unlisted hides every product from FindAll, as a listing taken before a concurrent insert would.
type unlisted struct {
	product.Repository
}

func (unlisted) FindAll(context.Context, *dto.ProductFilters) ([]model.ProductStock, int, error) {
	return nil, 0, nil
}

func TestCreateProduct_SKUCheckedInStorage(t *testing.T) {
	tests := []struct {
		name   string
		sku    string
		reject bool
	}{
		{"taken sku in another case", "sku-laptop", true},
		{"free sku", "SKU-DESK", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			uc := usecase.NewProductUseCase(unlisted{prodRepo.NewSQLRepository(db)}, invRepo.NewSQLRepository(db), time.Second, logger.NewNop())
			testutil.SeedProduct(t, db, "Laptop", "800", 10, 2)

			_, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{Name: "Desk", SKU: tt.sku, Price: decimal.NewFromInt(120), Quantity: 1})
			if !tt.reject {
				require.NoError(t, err)
				return
			}
			var conflict *apperr.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, "sku", conflict.Field)
			assert.Equal(t, tt.sku, conflict.Value)
		})
	}
}

func TestUpdateProduct_StockAndRename(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	laptop := testutil.SeedProduct(t, db, "Laptop", "800", 10, 2)
	testutil.SeedProduct(t, db, "Mouse", "20", 10, 2)

	qty := 15
	p, err := uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: laptop, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 15, p.Quantity)

	var adjustments int
	require.NoError(t, db.Get(&adjustments, `SELECT count(*) FROM inventory_movements WHERE movement_type = 'adjustment'`))
	assert.Equal(t, 1, adjustments)

	name := "MOUSE"
	_, err = uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: laptop, Name: &name})
	var conflict *apperr.ConflictError
	assert.True(t, errors.As(err, &conflict))

	_, err = uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: laptop})
	var v *apperr.ValidationError
	assert.True(t, errors.As(err, &v))
}

func TestFindByReference(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	w1 := testutil.SeedProduct(t, db, "Widget", "5", 10, 2)
	w2 := testutil.SeedProduct(t, db, "Blue Widget", "6", 10, 2)
	testutil.SeedProduct(t, db, "Mouse", "20", 10, 2)

	p, err := uc.FindByReference(ctx, "mouse")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", p.Name)

	_, err = uc.FindByReference(ctx, "widget")
	var amb *apperr.AmbiguousReferenceError
	require.True(t, errors.As(err, &amb))
	require.Len(t, amb.Candidates, 2)
	assert.ElementsMatch(t, []int64{w1, w2}, []int64{amb.Candidates[0].ID, amb.Candidates[1].ID})

	_, err = uc.FindByReference(ctx, "keyboard")
	var nf *apperr.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]string{
		"":             "Other",
		"Electrónicos": "Electronics",
		"ropa":         "Clothing",
		"home office":  "Home Office",
		"GARDEN":       "Garden",
	}
	for in, want := range tests {
		assert.Equal(t, want, usecase.NormalizeCategory(in), in)
	}
}
