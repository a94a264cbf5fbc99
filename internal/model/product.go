package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description" json:"description"`
}

// ProductStock is a product joined with its inventory record.
type ProductStock struct {
	Product
	Quantity     int    `db:"quantity" json:"quantity"`
	MinThreshold int    `db:"min_threshold" json:"min_threshold"`
	MaxThreshold int    `db:"max_threshold" json:"max_threshold"`
	Location     string `db:"location" json:"location"`
}

func (p ProductStock) Status() StockStatus {
	return DeriveStatus(p.Quantity, p.MinThreshold)
}

// Value is price times quantity on hand.
func (p ProductStock) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
