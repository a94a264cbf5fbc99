package product

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/product/dto"
)

type UseCase interface {
	// CreateProduct rejects a name or SKU that collides with an existing product.
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.ProductStock, error)
	GetProduct(ctx context.Context, id int64) (*model.ProductStock, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.ProductStock, int, error)
	// FindByReference matches ref as a case-insensitive substring of product names and
	// refuses to guess when more than one product matches.
	FindByReference(ctx context.Context, ref string) (*model.ProductStock, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.ProductStock, error)
	DeleteProduct(ctx context.Context, id int64, cascade bool) error
}
