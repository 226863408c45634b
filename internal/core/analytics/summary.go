package analytics

import (
	"github.com/shopspring/decimal"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// Summarize computes the whole-dataset KPIs from raw orders. Revenue and
// quantity are summed over line items, not over the stored order totals, so
// a cart-side rounding quirk can never skew the dashboard.
func Summarize(orders []v1.Order) SummaryStats {
	stats := SummaryStats{TotalOrders: len(orders)}

	for i := range orders {
		for j := range orders[i].Items {
			item := &orders[i].Items[j]
			quantity := item.EffectiveQuantity()
			stats.TotalRevenue = stats.TotalRevenue.Add(item.Price.Mul(quantity))
			stats.TotalQuantity = stats.TotalQuantity.Add(quantity)
		}
	}

	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TotalOrders)))
	}

	return stats
}
