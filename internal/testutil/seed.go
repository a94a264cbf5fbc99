package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// SeedProduct inserts a product with its inventory row and returns the product id.
func SeedProduct(t testing.TB, db *sqlx.DB, name, price string, quantity, minThreshold int) int64 {
	t.Helper()

	now := time.Now()
	var id int64
	err := db.QueryRowx(db.Rebind(`
        INSERT INTO products (sku, name, name_key, price, category, description, created_at, updated_at)
        VALUES (?, ?, ?, ?, 'Other', '', ?, ?)
        RETURNING id`),
		"SKU-"+name, name, extract.Fold(strings.TrimSpace(name)), decimal.RequireFromString(price), now, now,
	).Scan(&id)
	require.NoError(t, err)

	_, err = db.Exec(db.Rebind(`
        INSERT INTO inventory (product_id, quantity, min_threshold, max_threshold, location, updated_at)
        VALUES (?, ?, ?, ?, 'Main Warehouse', ?)`),
		id, quantity, minThreshold, quantity*2, now,
	)
	require.NoError(t, err)
	return id
}

func SeedCustomer(t testing.TB, db *sqlx.DB, name string) int64 {
	t.Helper()

	now := time.Now()
	var id int64
	err := db.QueryRowx(db.Rebind(`
        INSERT INTO customers (name, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`),
		name, now, now,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func StockOf(t testing.TB, db *sqlx.DB, productID int64) int {
	t.Helper()

	var q int
	require.NoError(t, db.Get(&q, db.Rebind(`SELECT quantity FROM inventory WHERE product_id = ?`), productID))
	return q
}
