package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"go.uber.org/zap"
)

const listedNormal = 10

// Agent answers stock listing and inventory analysis commands.
type Agent struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewAgent(uc inventory.UseCase, log logger.ZapLogger) *Agent {
	return &Agent{uc: uc, logger: log}
}

func (a *Agent) Handle(ctx context.Context, t intent.Type, _ string) (chat.Result, error) {
	switch t {
	case intent.ListInventory:
		return a.list(ctx)
	case intent.InventoryAnalysis:
		return a.analyze(ctx)
	}
	return chat.Result{}, fmt.Errorf("inventory agent cannot handle %s", t)
}

func (a *Agent) list(ctx context.Context) (chat.Result, error) {
	ov, err := a.uc.Overview(ctx)
	if err != nil {
		a.logger.Warn("Inventory listing failed", zap.Error(err))
		return chat.Convert("Could not list the inventory", err)
	}
	if ov.Summary.TotalProducts == 0 {
		return chat.Result{Success: true, Text: "The inventory is empty. Try \"add product Laptop, price $800, quantity 10\"."}, nil
	}

	return chat.Result{
		Success: true,
		Text:    renderOverview(ov),
		Data: map[string]any{
			"summary":        ov.Summary,
			"total_value":    ov.TotalValue.StringFixed(2),
			"normal_items":   len(ov.Normal),
			"low_items":      len(ov.Low),
			"critical_items": len(ov.Critical),
			"out_of_stock":   len(ov.OutOfStock),
		},
	}, nil
}

func renderOverview(ov *dto.Overview) string {
	var b strings.Builder
	b.WriteString("Current inventory\n")

	writeGroup := func(title string, items []model.ProductStock, limit int) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for i, p := range items {
			if limit > 0 && i == limit {
				fmt.Fprintf(&b, "... and %d more\n", len(items)-limit)
				break
			}
			fmt.Fprintf(&b, "- %s: %d units (%s)\n", p.Name, p.Quantity, chat.Money(p.Price))
		}
	}
	writeGroup("In stock", ov.Normal, listedNormal)
	writeGroup("Low stock", ov.Low, 0)
	writeGroup("Critical stock", ov.Critical, 0)
	writeGroup("Out of stock", ov.OutOfStock, 0)

	b.WriteString("\nSummary:\n")
	fmt.Fprintf(&b, "- Products: %d\n", ov.Summary.TotalProducts)
	fmt.Fprintf(&b, "- Units: %s\n", chat.Count(ov.Summary.TotalUnits))
	fmt.Fprintf(&b, "- Low stock products: %d\n", ov.Summary.LowStock)
	fmt.Fprintf(&b, "- Total value: %s", chat.Money(ov.TotalValue))
	return b.String()
}

func (a *Agent) analyze(ctx context.Context) (chat.Result, error) {
	report, err := a.uc.Analyze(ctx)
	if err != nil {
		a.logger.Warn("Inventory analysis failed", zap.Error(err))
		return chat.Convert("Could not analyze the inventory", err)
	}
	return chat.Result{
		Success: true,
		Text:    report.Text,
		Charts:  report.Charts,
		Data: map[string]any{
			"analysis":        report.Summary,
			"recommendations": report.Recommendations,
		},
	}, nil
}
