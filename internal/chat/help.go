package chat

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/intent"
)

const helpText = `I can help you with:

Products
  add product Laptop, price $800, quantity 10, category electronics
  update the price of product Laptop to $750
  update product id 4 to 15 units

Sales
  sell 2 of Laptop and 3 of Mouse to customer Ana Lopez, pay cash
  show sales

Inventory
  show inventory
  analyze inventory

Reports
  send the inventory report to boss@example.com`

// Help answers anything no other handler claims.
type Help struct{}

func (Help) Handle(context.Context, intent.Type, string) (Result, error) {
	return Result{
		Success: true,
		Text:    helpText,
		Data: map[string]any{
			"capabilities": []string{"products", "sales", "inventory", "reports"},
		},
	}, nil
}
