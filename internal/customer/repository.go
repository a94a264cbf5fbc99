package customer

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/model"
)

// Repository reads customers. New customers are inserted by the order
// transaction that first sells to them.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
	// FindAll returns customers in id order, which is the order name matching walks.
	FindAll(ctx context.Context) ([]model.Customer, error)
}
