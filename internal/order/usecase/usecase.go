package usecase

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/customer"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/order"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/order/publisher"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"github.com/fekuna/omnipos-assistant-service/internal/product"
	"go.uber.org/zap"
)

const DefaultPaymentMethod = "card"

type orderUseCase struct {
	repo      order.Repository
	products  product.Repository
	customers customer.Repository
	cache     analysis.Cache
	events    publisher.Publisher
	timeout   time.Duration
	now       func() time.Time
	logger    logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	products product.Repository,
	customers customer.Repository,
	cache analysis.Cache,
	events publisher.Publisher,
	storageTimeout time.Duration,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		products:  products,
		customers: customers,
		cache:     cache,
		events:    events,
		timeout:   storageTimeout,
		now:       time.Now,
		logger:    log,
	}
}

// ResolveProduct picks the product related to ref, preferring the shortest name and then the lowest id.
func ResolveProduct(products []model.ProductStock, ref string) (*model.ProductStock, bool) {
	var best *model.ProductStock
	for i := range products {
		p := &products[i]
		if !extract.Related(p.Name, ref) {
			continue
		}
		if best == nil || len([]rune(p.Name)) < len([]rune(best.Name)) {
			best = p
		}
	}
	return best, best != nil
}

// NormalizePayment maps free text onto cash, card or transfer.
func NormalizePayment(raw string) string {
	f := extract.Fold(raw)
	switch {
	case strings.Contains(f, "cash"), strings.Contains(f, "efectivo"):
		return "cash"
	case strings.Contains(f, "transfer"):
		return "transfer"
	case strings.Contains(f, "card"), strings.Contains(f, "tarjeta"), strings.Contains(f, "credit"),
		strings.Contains(f, "debit"), strings.Contains(f, "credito"), strings.Contains(f, "debito"):
		return "card"
	}
	return DefaultPaymentMethod
}

func (uc *orderUseCase) resolveCustomer(ctx context.Context, req *dto.SaleRequest) (*model.Customer, bool, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	if req.CustomerID > 0 {
		c, err := uc.customers.FindByID(ctx, req.CustomerID)
		if err != nil {
			return nil, false, apperr.Storage(err)
		}
		if c == nil {
			return nil, false, &apperr.NotFoundError{Entity: "customer", Ref: strconv.FormatInt(req.CustomerID, 10)}
		}
		return c, false, nil
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, false, apperr.Validation("customer", `Say who is buying, e.g. "to customer Ana Lopez" or "customer id 3".`)
	}
	all, err := uc.customers.FindAll(ctx)
	if err != nil {
		return nil, false, apperr.Storage(err)
	}
	for i := range all {
		if extract.Related(all[i].Name, name) {
			return &all[i], false, nil
		}
	}

	email := customer.SynthesizeEmail(name)
	return &model.Customer{Name: name, Email: &email}, true, nil
}

type resolvedLine struct {
	product  *model.ProductStock
	quantity int
}

func (uc *orderUseCase) CreateSale(ctx context.Context, req *dto.SaleRequest) (*dto.Receipt, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("items", `Name the products and quantities, e.g. "sell 2 of Laptop and 1 of Mouse".`)
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("quantity", "every line needs a quantity greater than zero")
		}
	}

	cust, create, err := uc.resolveCustomer(ctx, req)
	if err != nil {
		return nil, err
	}

	sctx, cancel := timeouts.Bound(ctx, uc.timeout)
	products, _, err := uc.products.FindAll(sctx, nil)
	cancel()
	if err != nil {
		return nil, apperr.Storage(err)
	}

	// Lines naming the same product are merged so stock is checked against the combined quantity.
	var (
		lines    []resolvedLine
		byID     = map[int64]int{}
		lineErrs []error
	)
	for _, it := range req.Items {
		p, ok := ResolveProduct(products, it.Product)
		if !ok {
			lineErrs = append(lineErrs, &apperr.NotFoundError{Entity: "product", Ref: it.Product})
			continue
		}
		if i, seen := byID[p.ID]; seen {
			lines[i].quantity += it.Quantity
			continue
		}
		byID[p.ID] = len(lines)
		lines = append(lines, resolvedLine{product: p, quantity: it.Quantity})
	}
	for _, l := range lines {
		if l.quantity > l.product.Quantity {
			lineErrs = append(lineErrs, &apperr.InsufficientStockError{
				ProductID: l.product.ID, Product: l.product.Name, Available: l.product.Quantity, Requested: l.quantity,
			})
		}
	}
	if len(lineErrs) > 0 {
		return nil, &apperr.LineErrors{Errors: lineErrs}
	}

	input := &dto.CreateOrderInput{CustomerID: cust.ID, PaymentMethod: req.PaymentMethod}
	if create {
		now := uc.now()
		cust.CreatedAt, cust.UpdatedAt = now, now
		input.NewCustomer = cust
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = DefaultPaymentMethod
	}
	for _, l := range lines {
		input.Lines = append(input.Lines, dto.LineRequest{ProductID: l.product.ID, Quantity: l.quantity})
	}

	sctx, cancel = timeouts.Bound(ctx, uc.timeout)
	receipt, err := uc.repo.CreateAtomic(sctx, input)
	cancel()
	if err != nil {
		return nil, apperr.Storage(err)
	}

	if create {
		uc.logger.Info("Customer created for sale", zap.Int64("customer_id", cust.ID), zap.String("name", cust.Name))
	}
	uc.logger.Info("Order created",
		zap.Int64("order_id", receipt.Order.ID),
		zap.Int64("customer_id", receipt.Order.CustomerID),
		zap.String("total", receipt.Order.TotalAmount.StringFixed(2)),
	)
	uc.publish(ctx, receipt)
	return receipt, nil
}

// publish never affects the sale; a failed event is only logged.
func (uc *orderUseCase) publish(ctx context.Context, receipt *dto.Receipt) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()
	if err := uc.events.OrderCreated(ctx, receipt); err != nil {
		uc.logger.Warn("Failed to publish OrderCreated event", zap.Int64("order_id", receipt.Order.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	orders, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return orders, nil
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	ctx, cancel := timeouts.Bound(ctx, uc.timeout)
	defer cancel()

	o, err := uc.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	uc.logger.Info("Order status changed", zap.Int64("order_id", id), zap.String("status", string(status)))
	return o, nil
}

func (uc *orderUseCase) AnalyzeSales(ctx context.Context) (*analysis.Report, error) {
	orders, err := uc.ListOrders(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperr.Validation("", "There are no sales to analyze yet. Record a sale first.")
	}

	slices.SortStableFunc(orders, func(a, b model.Order) int {
		if c := b.OrderDate.Compare(a.OrderDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	report := BuildReport(orders, uc.now())
	if err := uc.cache.Set(ctx, analysis.KindSales, *report); err != nil {
		uc.logger.Warn("Failed to cache sales analysis", zap.Error(err))
	}
	uc.logger.Info("Sales analyzed", zap.Int("orders", len(orders)))
	return report, nil
}
