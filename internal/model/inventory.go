package model

import "time"

type StockStatus string

const (
	StockNormal     StockStatus = "normal"
	StockLow        StockStatus = "low"
	StockCritical   StockStatus = "critical"
	StockOutOfStock StockStatus = "out_of_stock"
)

// DeriveStatus is evaluated in order: empty, at or under the minimum, at or under twice the minimum.
func DeriveStatus(quantity, minThreshold int) StockStatus {
	switch {
	case quantity == 0:
		return StockOutOfStock
	case quantity <= minThreshold:
		return StockCritical
	case quantity <= 2*minThreshold:
		return StockLow
	default:
		return StockNormal
	}
}

type InventoryRecord struct {
	ID           int64     `db:"id"`
	ProductID    int64     `db:"product_id"`
	Quantity     int       `db:"quantity"`
	MinThreshold int       `db:"min_threshold"`
	MaxThreshold int       `db:"max_threshold"`
	Location     string    `db:"location"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r InventoryRecord) Status() StockStatus {
	return DeriveStatus(r.Quantity, r.MinThreshold)
}

type MovementType string

const (
	MovementInitial    MovementType = "initial"
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

type InventoryMovement struct {
	ID             int64        `db:"id"`
	ProductID      int64        `db:"product_id"`
	MovementType   MovementType `db:"movement_type"`
	QuantityChange int          `db:"quantity_change"`
	QuantityBefore int          `db:"quantity_before"`
	QuantityAfter  int          `db:"quantity_after"`
	ReferenceType  *string      `db:"reference_type"`
	ReferenceID    *string      `db:"reference_id"`
	Notes          string       `db:"notes"`
	CreatedAt      time.Time    `db:"created_at"`
}
