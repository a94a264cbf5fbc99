package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory"
	invDto "github.com/fekuna/omnipos-assistant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"github.com/fekuna/omnipos-assistant-service/internal/product"
	"github.com/fekuna/omnipos-assistant-service/internal/product/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultLocation = "Main Warehouse"
	minDefaultFloor = 5
	staleRetries    = 3
)

type productUseCase struct {
	repo    product.Repository
	invRepo inventory.Repository
	timeout time.Duration
	now     func() time.Time
	logger  logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, invRepo inventory.Repository, storageTimeout time.Duration, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:    repo,
		invRepo: invRepo,
		timeout: storageTimeout,
		now:     time.Now,
		logger:  log,
	}
}

// SynthesizeSKU builds SKU-YYYYMMDDHHMMSS-<8 hex chars>.
func SynthesizeSKU(at time.Time) string {
	return fmt.Sprintf("SKU-%s-%s", at.Format("20060102150405"), strings.ToUpper(uuid.NewString()[:8]))
}

func sameName(a, b string) bool {
	return extract.Fold(strings.TrimSpace(a)) == extract.Fold(strings.TrimSpace(b))
}

func (uc *productUseCase) all(ctx context.Context) ([]model.ProductStock, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()
	products, _, err := uc.repo.FindAll(ctx, nil)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return products, nil
}

// checkSKU reports a ConflictError naming the holder when sku is already taken.
func (uc *productUseCase) checkSKU(ctx context.Context, sku string, known []model.ProductStock) error {
	sctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()
	unique, err := uc.repo.IsSKUUnique(sctx, sku, 0)
	if err != nil {
		return apperr.Storage(err)
	}
	if unique {
		return nil
	}
	conflict := &apperr.ConflictError{Entity: "product", Field: "sku", Value: sku}
	for _, p := range known {
		if strings.EqualFold(p.SKU, sku) {
			conflict.ExistingID, conflict.ExistingName = p.ID, p.Name
		}
	}
	return conflict
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.ProductStock, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name", "the product name cannot be empty")
	}
	if !input.Price.IsPositive() {
		return nil, apperr.Validation("price", "the price must be greater than zero")
	}
	if input.Quantity < 0 {
		return nil, apperr.Validation("quantity", "the quantity cannot be negative")
	}

	now := uc.now()
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = SynthesizeSKU(now)
	}

	existing, err := uc.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if sameName(p.Name, name) {
			return nil, &apperr.ConflictError{Entity: "product", Field: "name", Value: name, ExistingID: p.ID, ExistingName: p.Name}
		}
	}
	if err := uc.checkSKU(ctx, sku, existing); err != nil {
		return nil, err
	}

	minThreshold := max(minDefaultFloor, input.Quantity/5)
	if input.MinThreshold != nil {
		minThreshold = *input.MinThreshold
	}
	maxThreshold := input.Quantity * 2
	if input.MaxThreshold != nil {
		maxThreshold = *input.MaxThreshold
	}
	if minThreshold < 0 || maxThreshold < 0 {
		return nil, apperr.Validation("thresholds", "stock thresholds cannot be negative")
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = DefaultLocation
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = "Producto " + name
	}

	p := &model.Product{
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
		SKU:         sku,
		Name:        name,
		Price:       input.Price.Round(2),
		Category:    NormalizeCategory(input.Category),
		Description: description,
	}
	inv := &model.InventoryRecord{
		Quantity:     input.Quantity,
		MinThreshold: minThreshold,
		MaxThreshold: maxThreshold,
		Location:     location,
		UpdatedAt:    now,
	}

	sctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()
	if err := uc.repo.Create(sctx, p, inv); err != nil {
		return nil, apperr.Storage(err)
	}

	uc.logger.Info("Product created", zap.Int64("product_id", p.ID), zap.String("sku", p.SKU), zap.Int("quantity", inv.Quantity))

	return &model.ProductStock{
		Product:      *p,
		Quantity:     inv.Quantity,
		MinThreshold: inv.MinThreshold,
		MaxThreshold: inv.MaxThreshold,
		Location:     inv.Location,
	}, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.ProductStock, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if p == nil {
		return nil, &apperr.NotFoundError{Entity: "product", Ref: strconv.FormatInt(id, 10)}
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.ProductStock, int, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	products, total, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return products, total, nil
}

func (uc *productUseCase) FindByReference(ctx context.Context, ref string) (*model.ProductStock, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.Validation("product", "say which product, by name or id")
	}

	products, err := uc.all(ctx)
	if err != nil {
		return nil, err
	}

	var matches []model.ProductStock
	for _, p := range products {
		if extract.Contains(p.Name, ref) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &apperr.NotFoundError{Entity: "product", Ref: ref}
	case 1:
		return &matches[0], nil
	}

	candidates := make([]apperr.Candidate, len(matches))
	for i, m := range matches {
		candidates[i] = apperr.Candidate{ID: m.ID, Name: m.Name}
	}
	return nil, &apperr.AmbiguousReferenceError{Entity: "product", Ref: ref, Candidates: candidates}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.ProductStock, error) {
	if input.Empty() {
		return nil, apperr.Validation("changes", "no changes specified")
	}

	current, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.TouchesProduct() {
		p := current.Product

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return nil, apperr.Validation("name", "the new name cannot be empty")
			}
			products, err := uc.all(ctx)
			if err != nil {
				return nil, err
			}
			for _, other := range products {
				if other.ID != p.ID && sameName(other.Name, name) {
					return nil, &apperr.ConflictError{Entity: "product", Field: "name", Value: name, ExistingID: other.ID, ExistingName: other.Name}
				}
			}
			p.Name = name
		}
		if input.Price != nil {
			if !input.Price.IsPositive() {
				return nil, apperr.Validation("price", "the price must be greater than zero")
			}
			p.Price = input.Price.Round(2)
		}
		if input.Category != nil {
			p.Category = NormalizeCategory(*input.Category)
		}
		if input.Description != nil {
			p.Description = strings.TrimSpace(*input.Description)
		}
		p.UpdatedAt = uc.now()

		sctx, cancel := timeouts.Bound(ctx, uc.timeout)
		err := uc.repo.Update(sctx, &p)
		cancel()
		if err != nil {
			return nil, apperr.Storage(err)
		}
	}

	if input.TouchesStock() {
		if err := uc.setLevels(ctx, input); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("Product updated", zap.Int64("product_id", input.ID))
	return uc.GetProduct(ctx, input.ID)
}

// setLevels retries when a concurrent sale moved the stock between read and write.
func (uc *productUseCase) setLevels(ctx context.Context, input *dto.UpdateProductInput) error {
	for _, v := range []*int{input.Quantity, input.MinThreshold, input.MaxThreshold} {
		if v != nil && *v < 0 {
			return apperr.Validation("quantity", "stock values cannot be negative")
		}
	}

	for attempt := 1; ; attempt++ {
		sctx, cancel := timeouts.Bound(ctx, uc.timeout)
		rec, err := uc.invRepo.GetByProduct(sctx, input.ID)
		if err != nil {
			cancel()
			return apperr.Storage(err)
		}
		if rec == nil {
			cancel()
			return &apperr.NotFoundError{Entity: "inventory record", Ref: strconv.FormatInt(input.ID, 10)}
		}

		_, err = uc.invRepo.SetLevels(sctx, &invDto.SetLevelsInput{
			ProductID:        input.ID,
			ExpectedQuantity: rec.Quantity,
			Quantity:         input.Quantity,
			MinThreshold:     input.MinThreshold,
			MaxThreshold:     input.MaxThreshold,
			Reason:           "manual adjustment",
			ReferenceType:    "edit",
		})
		cancel()
		if errors.Is(err, inventory.ErrStaleQuantity) && attempt < staleRetries {
			uc.logger.Debug("Stock moved during edit, retrying", zap.Int64("product_id", input.ID), zap.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, inventory.ErrStaleQuantity) {
			return &apperr.ConflictError{Entity: "inventory", Field: "quantity", Value: "changed while editing, try again"}
		}
		if err != nil {
			return apperr.Storage(err)
		}
		return nil
	}
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64, cascade bool) error {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	if err := uc.repo.Delete(ctx, id, cascade); err != nil {
		return apperr.Storage(err)
	}
	uc.logger.Info("Product deleted", zap.Int64("product_id", id), zap.Bool("cascade", cascade))
	return nil
}
