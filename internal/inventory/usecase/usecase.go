package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"github.com/fekuna/omnipos-assistant-service/internal/product"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo     inventory.Repository
	products product.Repository
	cache    analysis.Cache
	timeout  time.Duration
	now      func() time.Time
	logger   logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, products product.Repository, cache analysis.Cache, storageTimeout time.Duration, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		products: products,
		cache:    cache,
		timeout:  storageTimeout,
		now:      time.Now,
		logger:   log,
	}
}

func (uc *inventoryUseCase) stock(ctx context.Context) ([]model.ProductStock, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	products, _, err := uc.products.FindAll(ctx, nil)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return products, nil
}

func (uc *inventoryUseCase) Overview(ctx context.Context) (*dto.Overview, error) {
	products, err := uc.stock(ctx)
	if err != nil {
		return nil, err
	}

	sctx, cancel := timeouts.Bound(ctx, uc.timeout)
	summary, err := uc.repo.Summary(sctx)
	cancel()
	if err != nil {
		return nil, apperr.Storage(err)
	}

	out := &dto.Overview{Summary: *summary, TotalValue: decimal.Zero}
	for _, p := range products {
		out.TotalValue = out.TotalValue.Add(p.Value())
		switch p.Status() {
		case model.StockNormal:
			out.Normal = append(out.Normal, p)
		case model.StockLow:
			out.Low = append(out.Low, p)
		case model.StockCritical:
			out.Critical = append(out.Critical, p)
		case model.StockOutOfStock:
			out.OutOfStock = append(out.OutOfStock, p)
		}
	}
	return out, nil
}

func (uc *inventoryUseCase) Analyze(ctx context.Context) (*analysis.Report, error) {
	products, err := uc.stock(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperr.Validation("", "There is no inventory to analyze yet. Add a product first.")
	}

	report := BuildReport(products, uc.now())

	if err := uc.cache.Set(ctx, analysis.KindInventory, *report); err != nil {
		uc.logger.Warn("Failed to cache inventory analysis", zap.Error(err))
	}
	uc.logger.Info("Inventory analyzed",
		zap.Int("products", len(products)),
		zap.Int("charts", len(report.Charts)),
	)
	return report, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	items, total, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return items, total, nil
}
