package usecase

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/chart"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	topProducts       = 3
	lowUnitsThreshold = 50
	maxCategories     = 5
)

type categoryStat struct {
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

func needsRestock(p model.ProductStock) bool {
	s := p.Status()
	return s == model.StockCritical || s == model.StockOutOfStock
}

// byValue orders products by stock value, highest first, ties by id.
func byValue(products []model.ProductStock) []model.ProductStock {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b model.ProductStock) int {
		if c := b.Value().Cmp(a.Value()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

func categories(products []model.ProductStock) []categoryStat {
	idx := map[string]int{}
	var stats []categoryStat
	for _, p := range products {
		name := p.Category
		if name == "" {
			name = "Other"
		}
		i, ok := idx[name]
		if !ok {
			i = len(stats)
			idx[name] = i
			stats = append(stats, categoryStat{Name: name, Value: decimal.Zero})
		}
		stats[i].Count++
		stats[i].Value = stats[i].Value.Add(p.Value())
	}
	slices.SortStableFunc(stats, func(a, b categoryStat) int { return b.Value.Cmp(a.Value) })
	return stats
}

// Recommendations are rule based: restock pressure, overall volume, category sprawl.
func Recommendations(restock, totalUnits, categoryCount int) []string {
	var recs []string
	if restock > 0 {
		recs = append(recs, fmt.Sprintf("%d products need urgent restock", restock))
	}
	if totalUnits < lowUnitsThreshold {
		recs = append(recs, "Overall stock is low, consider increasing inventory")
	}
	if categoryCount > maxCategories {
		recs = append(recs, fmt.Sprintf("%d categories in use, consider consolidating them", categoryCount))
	}
	if len(recs) == 0 {
		recs = append(recs, "Inventory is healthy, no immediate action needed")
	}
	return recs
}

// BuildReport derives the inventory analysis from a stock snapshot.
func BuildReport(products []model.ProductStock, at time.Time) *analysis.Report {
	totalValue := decimal.Zero
	totalUnits, restock := 0, 0
	for _, p := range products {
		totalValue = totalValue.Add(p.Value())
		totalUnits += p.Quantity
		if needsRestock(p) {
			restock++
		}
	}

	cats := categories(products)
	ranked := byValue(products)
	top := ranked[:min(topProducts, len(ranked))]
	recs := Recommendations(restock, totalUnits, len(cats))

	topNames := make([]string, len(top))
	for i, p := range top {
		topNames[i] = p.Name
	}

	var b strings.Builder
	b.WriteString("Inventory analysis\n\n")
	fmt.Fprintf(&b, "Products: %d\n", len(products))
	fmt.Fprintf(&b, "Units in stock: %s\n", chat.Count(totalUnits))
	fmt.Fprintf(&b, "Total value: %s\n", chat.Money(totalValue))
	fmt.Fprintf(&b, "Critical or out of stock: %d\n", restock)

	b.WriteString("\nBy category:\n")
	for _, c := range cats[:min(5, len(cats))] {
		fmt.Fprintf(&b, "- %s: %d products (%s)\n", c.Name, c.Count, chat.Money(c.Value))
	}
	b.WriteString("\nRecommendations:\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nMost valuable stock:\n")
	for i, p := range top {
		fmt.Fprintf(&b, "%d. %s: %s (%d x %s)\n", i+1, p.Name, chat.Money(p.Value()), p.Quantity, chat.Money(p.Price))
	}

	return &analysis.Report{
		Kind:  analysis.KindInventory,
		Title: "Inventory analysis",
		Text:  strings.TrimRight(b.String(), "\n"),
		Summary: map[string]any{
			"total_products": len(products),
			"total_units":    totalUnits,
			"total_value":    totalValue.StringFixed(2),
			"critical_count": restock,
			"category_count": len(cats),
			"categories":     cats,
			"top_products":   topNames,
		},
		Recommendations: recs,
		Charts:          inventoryCharts(products, ranked, cats),
		GeneratedAt:     at,
	}
}

var statusLabels = []struct {
	status model.StockStatus
	label  string
}{
	{model.StockNormal, "Normal"},
	{model.StockLow, "Low"},
	{model.StockCritical, "Critical"},
	{model.StockOutOfStock, "Out of stock"},
}

func inventoryCharts(products, ranked []model.ProductStock, cats []categoryStat) []chart.Descriptor {
	var charts []chart.Descriptor

	counts := map[model.StockStatus]int{}
	for _, p := range products {
		counts[p.Status()]++
	}
	var status []chart.Point
	for _, s := range statusLabels {
		if n := counts[s.status]; n > 0 {
			status = append(status, chart.Point{Label: s.label, Value: float64(n)})
		}
	}
	charts = appendChart(charts, chart.Descriptor{Type: chart.Pie, Title: "Stock status distribution", Data: status})

	var byCategory []chart.Point
	for _, c := range cats[:min(8, len(cats))] {
		byCategory = append(byCategory, chart.Point{Label: chart.Shorten(c.Name, 15), Value: c.Value.Round(2).InexactFloat64()})
	}
	charts = appendChart(charts, chart.Descriptor{
		Type: chart.Bar, Title: "Inventory value by category", XLabel: "Category", YLabel: "Value", Data: byCategory,
	})

	var top []chart.Point
	for _, p := range ranked[:min(10, len(ranked))] {
		top = append(top, chart.Point{Label: chart.Shorten(p.Name, 12), Value: p.Value().Round(2).InexactFloat64()})
	}
	charts = appendChart(charts, chart.Descriptor{
		Type: chart.Bar, Title: "Top products by value", XLabel: "Product", YLabel: "Value", Data: top,
	})

	var urgent []model.ProductStock
	for _, p := range products {
		if needsRestock(p) {
			urgent = append(urgent, p)
		}
	}
	slices.SortStableFunc(urgent, func(a, b model.ProductStock) int { return cmp.Compare(a.Quantity, b.Quantity) })
	var restock []chart.Point
	for _, p := range urgent[:min(10, len(urgent))] {
		restock = append(restock, chart.Point{Label: chart.Shorten(p.Name, 10), Value: float64(p.Quantity)})
	}
	charts = appendChart(charts, chart.Descriptor{
		Type: chart.Bar, Title: "Products needing urgent restock", XLabel: "Product", YLabel: "Units", Data: restock,
	})

	return charts
}

func appendChart(charts []chart.Descriptor, d chart.Descriptor) []chart.Descriptor {
	if len(d.Data) == 0 {
		return charts
	}
	return append(charts, d)
}
