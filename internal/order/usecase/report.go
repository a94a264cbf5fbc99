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

const recentOrders = 5

type productRevenue struct {
	Name    string
	Units   int
	Revenue decimal.Decimal
}

// BuildReport summarizes orders, which must be sorted newest first.
// Cancelled orders are counted in the status distribution but not in revenue.
func BuildReport(orders []model.Order, at time.Time) *analysis.Report {
	revenue := decimal.Zero
	completed := 0
	statuses := map[string]int{}
	customers := map[int64]struct{}{}
	daily := map[string]decimal.Decimal{}
	byProduct := map[int64]*productRevenue{}

	for _, o := range orders {
		statuses[string(o.Status)]++
		customers[o.CustomerID] = struct{}{}
		if !o.Status.Completed() {
			continue
		}
		completed++
		revenue = revenue.Add(o.TotalAmount)

		day := o.OrderDate.Format(time.DateOnly)
		daily[day] = daily[day].Add(o.TotalAmount)

		for _, l := range o.Lines {
			pr, ok := byProduct[l.ProductID]
			if !ok {
				pr = &productRevenue{Name: l.ProductName, Revenue: decimal.Zero}
				byProduct[l.ProductID] = pr
			}
			pr.Units += l.Quantity
			pr.Revenue = pr.Revenue.Add(l.LineTotal)
		}
	}

	avg := decimal.Zero
	if completed > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(completed))).Round(2)
	}
	perCustomer := 0.0
	if len(customers) > 0 {
		perCustomer = float64(len(orders)) / float64(len(customers))
	}

	products := make([]productRevenue, 0, len(byProduct))
	for _, pr := range byProduct {
		products = append(products, *pr)
	}
	slices.SortFunc(products, func(a, b productRevenue) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	recent := orders[:min(recentOrders, len(orders))]
	recentRows := make([]map[string]any, len(recent))
	for i, o := range recent {
		recentRows[i] = map[string]any{
			"id":       o.ID,
			"customer": o.CustomerName,
			"total":    o.TotalAmount.StringFixed(2),
			"status":   o.Status,
			"date":     o.OrderDate.Format(time.DateOnly),
		}
	}

	var b strings.Builder
	b.WriteString("Sales analysis\n\n")
	fmt.Fprintf(&b, "Revenue: %s\n", chat.Money(revenue))
	fmt.Fprintf(&b, "Orders: %d (%d cancelled)\n", len(orders), len(orders)-completed)
	fmt.Fprintf(&b, "Average order: %s\n", chat.Money(avg))
	fmt.Fprintf(&b, "Customers: %d (%.1f orders each)\n", len(customers), perCustomer)

	b.WriteString("\nOrders by status:\n")
	for _, s := range []model.OrderStatus{model.OrderPending, model.OrderConfirmed, model.OrderProcessing, model.OrderShipped, model.OrderDelivered, model.OrderCancelled} {
		if n := statuses[string(s)]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", s, n)
		}
	}
	if len(products) > 0 {
		b.WriteString("\nBest sellers:\n")
		for i, p := range products[:min(recentOrders, len(products))] {
			fmt.Fprintf(&b, "%d. %s: %d units, %s\n", i+1, p.Name, p.Units, chat.Money(p.Revenue))
		}
	}
	b.WriteString("\nRecent orders:\n")
	for _, o := range recent {
		fmt.Fprintf(&b, "- #%d %s, %s, %s\n", o.ID, o.CustomerName, chat.Money(o.TotalAmount), o.Status)
	}

	return &analysis.Report{
		Kind:  analysis.KindSales,
		Title: "Sales analysis",
		Text:  strings.TrimRight(b.String(), "\n"),
		Summary: map[string]any{
			"total_revenue":       revenue.StringFixed(2),
			"total_orders":        len(orders),
			"completed_orders":    completed,
			"average_order_value": avg.StringFixed(2),
			"status_distribution": statuses,
			"recent_orders":       recentRows,
			"customer_count":      len(customers),
			"orders_per_customer": perCustomer,
		},
		Charts:      salesCharts(daily, products),
		GeneratedAt: at,
	}
}

func salesCharts(daily map[string]decimal.Decimal, products []productRevenue) []chart.Descriptor {
	var charts []chart.Descriptor

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	slices.Sort(days)
	if len(days) > 0 {
		points := make([]chart.Point, len(days))
		for i, d := range days {
			points[i] = chart.Point{Label: d, Value: daily[d].Round(2).InexactFloat64()}
		}
		charts = append(charts, chart.Descriptor{Type: chart.Line, Title: "Daily sales", XLabel: "Date", YLabel: "Revenue", Data: points})
	}

	if len(products) > 0 {
		top := products[:min(10, len(products))]
		points := make([]chart.Point, len(top))
		for i, p := range top {
			points[i] = chart.Point{Label: chart.Shorten(p.Name, 12), Value: p.Revenue.Round(2).InexactFloat64()}
		}
		charts = append(charts, chart.Descriptor{Type: chart.Bar, Title: "Top products by revenue", XLabel: "Product", YLabel: "Revenue", Data: points})
	}
	return charts
}
