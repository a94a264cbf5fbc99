package dto

import "github.com/shopspring/decimal"

// CreateProductInput is what the add-product command resolved from text.
type CreateProductInput struct {
	Name         string
	SKU          string
	Price        decimal.Decimal
	Quantity     int
	Category     string
	Description  string
	MinThreshold *int
	MaxThreshold *int
	Location     string
}

// UpdateProductInput carries only the fields an edit command named.
type UpdateProductInput struct {
	ID           int64
	Name         *string
	Price        *decimal.Decimal
	Category     *string
	Description  *string
	Quantity     *int
	MinThreshold *int
	MaxThreshold *int
}

func (in *UpdateProductInput) Empty() bool {
	return in.Name == nil && in.Price == nil && in.Category == nil && in.Description == nil &&
		in.Quantity == nil && in.MinThreshold == nil && in.MaxThreshold == nil
}

func (in *UpdateProductInput) TouchesProduct() bool {
	return in.Name != nil || in.Price != nil || in.Category != nil || in.Description != nil
}

func (in *UpdateProductInput) TouchesStock() bool {
	return in.Quantity != nil || in.MinThreshold != nil || in.MaxThreshold != nil
}
