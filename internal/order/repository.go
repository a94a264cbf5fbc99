package order

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
)

type Repository interface {
	// CreateAtomic re-validates stock, snapshots prices, inserts the order with its lines
	// and decrements inventory in a single transaction. Line failures come back together
	// as *apperr.LineErrors and nothing is written.
	CreateAtomic(ctx context.Context, input *dto.CreateOrderInput) (*dto.Receipt, error)
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	// UpdateStatus moves an order along its lifecycle; cancelling returns the stock.
	UpdateStatus(ctx context.Context, id int64, next model.OrderStatus) (*model.Order, error)
}
