package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-assistant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
)

// ErrStaleQuantity means stock moved between reading and writing; callers re-read and retry.
var ErrStaleQuantity = errors.New("inventory changed concurrently")

type Repository interface {
	GetByProduct(ctx context.Context, productID int64) (*model.InventoryRecord, error)
	Summary(ctx context.Context) (*dto.Summary, error)

	// SetLevels updates stock and thresholds and logs the movement in one transaction.
	SetLevels(ctx context.Context, input *dto.SetLevelsInput) (*model.InventoryRecord, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
