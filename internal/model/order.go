package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Completed orders count toward revenue.
func (s OrderStatus) Completed() bool {
	return s != OrderCancelled
}

type Order struct {
	ID            int64           `db:"id" json:"id"`
	CustomerID    int64           `db:"customer_id" json:"customer_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	Status        OrderStatus     `db:"status" json:"status"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	OrderDate     time.Time       `db:"order_date" json:"order_date"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	Lines         []OrderLine     `db:"-" json:"lines"`
}

type OrderLine struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
}
