package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/order"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
	"go.uber.org/zap"
)

// Agent handles sale and sales analysis commands.
type Agent struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewAgent(uc order.UseCase, log logger.ZapLogger) *Agent {
	return &Agent{uc: uc, logger: log}
}

func (a *Agent) Handle(ctx context.Context, t intent.Type, text string) (chat.Result, error) {
	switch t {
	case intent.CreateSale:
		return a.createSale(ctx, text)
	case intent.SalesAnalysis:
		return a.analyze(ctx)
	}
	return chat.Result{}, fmt.Errorf("sales agent cannot handle %s", t)
}

// ParseSale reads the customer, payment method and order lines from text.
func ParseSale(text string) (*dto.SaleRequest, error) {
	req := &dto.SaleRequest{}

	ref, ok := extract.Text(extract.Customer, text)
	if !ok {
		return nil, apperr.Validation("customer", `Say who is buying, e.g. "to customer Ana Lopez" or "customer id 3".`)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		req.CustomerID = id
	} else {
		req.CustomerName = ref
	}

	for _, it := range extract.Items(text) {
		req.Items = append(req.Items, dto.ItemRequest{Product: it.Product, Quantity: it.Quantity})
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("items", `Name the products and quantities, e.g. "sell 2 of Laptop and 1 of Mouse".`)
	}

	req.PaymentMethod = DefaultPaymentMethod
	if p, ok := extract.Text(extract.Payment, text); ok {
		req.PaymentMethod = NormalizePayment(p)
	}
	return req, nil
}

func (a *Agent) createSale(ctx context.Context, text string) (chat.Result, error) {
	req, err := ParseSale(text)
	if err != nil {
		return chat.Convert("Could not create the sale", err)
	}

	receipt, err := a.uc.CreateSale(ctx, req)
	if err != nil {
		a.logger.Warn("Sale rejected", zap.Error(err))
		return chat.Convert("Could not create the sale", err)
	}

	o := receipt.Order
	var b strings.Builder
	fmt.Fprintf(&b, "Sale recorded: order #%d for %s\n", o.ID, o.CustomerName)
	for _, l := range receipt.Lines {
		fmt.Fprintf(&b, "- %d x %s at %s = %s (stock %d -> %d)\n",
			l.Quantity, l.ProductName, chat.Money(l.UnitPrice), chat.Money(l.LineTotal), l.StockBefore, l.StockAfter)
	}
	fmt.Fprintf(&b, "Total: %s, paid by %s, status %s", chat.Money(o.TotalAmount), o.PaymentMethod, o.Status)

	return chat.Result{
		Success: true,
		Text:    b.String(),
		Order:   receipt,
		Data: map[string]any{
			"order_id": o.ID,
			"total":    o.TotalAmount.StringFixed(2),
			"lines":    receipt.Lines,
		},
	}, nil
}

func (a *Agent) analyze(ctx context.Context) (chat.Result, error) {
	report, err := a.uc.AnalyzeSales(ctx)
	if err != nil {
		a.logger.Warn("Sales analysis failed", zap.Error(err))
		return chat.Convert("Could not analyze sales", err)
	}
	return chat.Result{
		Success: true,
		Text:    report.Text,
		Charts:  report.Charts,
		Data:    map[string]any{"analysis": report.Summary},
	}, nil
}
