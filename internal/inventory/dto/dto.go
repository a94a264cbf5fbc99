package dto

import (
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/shopspring/decimal"
)

type MovementFilters struct {
	ProductID    int64
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

// Summary aggregates stock levels across all products.
type Summary struct {
	TotalProducts int `db:"total_products" json:"total_products"`
	TotalUnits    int `db:"total_units" json:"total_units"`
	LowStock      int `db:"low_stock" json:"low_stock"`
	OutOfStock    int `db:"out_of_stock" json:"out_of_stock"`
}

// Overview is the stock listing grouped by derived status.
type Overview struct {
	Normal     []model.ProductStock `json:"normal"`
	Low        []model.ProductStock `json:"low"`
	Critical   []model.ProductStock `json:"critical"`
	OutOfStock []model.ProductStock `json:"out_of_stock"`
	Summary    Summary              `json:"summary"`
	TotalValue decimal.Decimal      `json:"total_value"`
}
