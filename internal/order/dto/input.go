package dto

import "github.com/fekuna/omnipos-assistant-service/internal/model"

type LineRequest struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput sells to CustomerID, or to NewCustomer when it is set. A new
// customer is inserted in the order's transaction and CustomerID is filled in.
type CreateOrderInput struct {
	CustomerID    int64
	NewCustomer   *model.Customer
	PaymentMethod string
	Lines         []LineRequest
}

// ItemRequest is a sale line as named in the command: a product reference, not an id.
type ItemRequest struct {
	Product  string
	Quantity int
}

// SaleRequest names the customer by id or by name.
type SaleRequest struct {
	CustomerID    int64
	CustomerName  string
	PaymentMethod string
	Items         []ItemRequest
}
