package product

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product, its inventory record and the initial movement together.
	Create(ctx context.Context, product *model.Product, inv *model.InventoryRecord) error
	FindByID(ctx context.Context, id int64) (*model.ProductStock, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.ProductStock, int, error)
	Update(ctx context.Context, product *model.Product) error
	// Delete refuses products referenced by orders unless cascade is set, in which case
	// every order containing the product is removed with it.
	Delete(ctx context.Context, id int64, cascade bool) error

	IsSKUUnique(ctx context.Context, sku string, excludeID int64) (bool, error)
}
