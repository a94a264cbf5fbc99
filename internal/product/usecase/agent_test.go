package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/product/usecase"
	"github.com/fekuna/omnipos-assistant-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_AddProduct(t *testing.T) {
	uc, db := newUseCase(t)
	agent := usecase.NewAgent(uc, logger.NewNop())

	res, err := agent.Handle(context.Background(), intent.AddProduct, "add product Laptop, price $800, quantity 10, category electrónicos")
	require.NoError(t, err)
	require.True(t, res.Success, res.Text)
	assert.Contains(t, res.Text, "Product added: Laptop")
	assert.Contains(t, res.Text, "$800.00")
	assert.Contains(t, res.Text, "Electronics")

	assert.Equal(t, 10, testutil.StockOf(t, db, 1))
}

func TestAgent_AddProductMissingFields(t *testing.T) {
	tests := []struct {
		text  string
		field string
	}{
		{"add product Laptop, quantity 10", "price"},
		{"add product Laptop, price $800", "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			uc, _ := newUseCase(t)
			agent := usecase.NewAgent(uc, logger.NewNop())

			res, err := agent.Handle(context.Background(), intent.AddProduct, tt.text)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Contains(t, res.Text, "missing or invalid "+tt.field)
		})
	}
}

func TestAgent_AddProductDuplicateNameAnyCase(t *testing.T) {
	uc, db := newUseCase(t)
	agent := usecase.NewAgent(uc, logger.NewNop())
	testutil.SeedProduct(t, db, "laptop", "700", 3, 1)

	res, err := agent.Handle(context.Background(), intent.AddProduct, "add product Laptop, price $800, quantity 10")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Text, "duplicate product name")

	var count int
	require.NoError(t, db.Get(&count, `SELECT count(*) FROM products`))
	assert.Equal(t, 1, count)
}

func TestAgent_EditAmbiguousTargetChangesNothing(t *testing.T) {
	uc, db := newUseCase(t)
	agent := usecase.NewAgent(uc, logger.NewNop())
	w1 := testutil.SeedProduct(t, db, "Widget", "5", 4, 1)
	w2 := testutil.SeedProduct(t, db, "Widget Pro", "9", 6, 1)

	res, err := agent.Handle(context.Background(), intent.EditInventory, "update Widget to 15 units")
	require.NoError(t, err)
	assert.False(t, res.Success)

	detail := res.Data["error"].(map[string]any)
	assert.Equal(t, "ambiguous", detail["type"])
	candidates := detail["candidates"].([]map[string]any)
	require.Len(t, candidates, 2)
	assert.Equal(t, w1, candidates[0]["id"])
	assert.Equal(t, w2, candidates[1]["id"])

	assert.Equal(t, 4, testutil.StockOf(t, db, w1))
	assert.Equal(t, 6, testutil.StockOf(t, db, w2))
}

func TestAgent_Edit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains string
	}{
		{"price by name", "update the price of Laptop to $750", "price: $800.00 -> $750.00"},
		{"quantity by id", "update product id 1 to 15 units", "quantity: 10 -> 15"},
		{"quantity of named product", "change the quantity of product Laptop to 15", "quantity: 10 -> 15"},
		{"stock of named product", "update the stock of product Laptop to 15", "quantity: 10 -> 15"},
		{"cantidad de producto", "cambiar cantidad de producto Laptop a 15", "quantity: 10 -> 15"},
		{"category", "edit product Laptop, category oficina", "category: Other -> Office"},
		{"rename", "edit product Laptop, name: Laptop Pro", "name: Laptop -> Laptop Pro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, db := newUseCase(t)
			agent := usecase.NewAgent(uc, logger.NewNop())
			testutil.SeedProduct(t, db, "Laptop", "800", 10, 2)

			res, err := agent.Handle(context.Background(), intent.EditInventory, tt.text)
			require.NoError(t, err)
			require.True(t, res.Success, res.Text)
			assert.Contains(t, res.Text, tt.contains)
		})
	}
}

func TestAgent_EditWithoutChanges(t *testing.T) {
	uc, db := newUseCase(t)
	agent := usecase.NewAgent(uc, logger.NewNop())
	testutil.SeedProduct(t, db, "Laptop", "800", 10, 2)

	res, err := agent.Handle(context.Background(), intent.EditInventory, "edit product Laptop")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Text, "No changes specified")
}
