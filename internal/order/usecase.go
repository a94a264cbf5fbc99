package order

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
)

type UseCase interface {
	// CreateSale resolves the customer and every product reference, then commits the
	// order atomically. Any failing line aborts the sale and all failures are returned together.
	CreateSale(ctx context.Context, req *dto.SaleRequest) (*dto.Receipt, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	// AnalyzeSales computes the sales report and stores it as the latest analysis.
	AnalyzeSales(ctx context.Context) (*analysis.Report, error)
}
