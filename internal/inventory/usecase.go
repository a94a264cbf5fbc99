package inventory

import (
	"context"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
)

type UseCase interface {
	Overview(ctx context.Context) (*dto.Overview, error)
	// Analyze computes the inventory report and stores it as the latest analysis.
	Analyze(ctx context.Context) (*analysis.Report, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
