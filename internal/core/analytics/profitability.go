package analytics

import (
	"github.com/shopspring/decimal"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// DefaultCostRatio is the assumed cost-of-goods share of the catalog price.
// It is a placeholder business rule, not derived from real cost accounting:
// no purchase-price data exists in the system, so the estimate assumes a
// fixed 30% margin. Overridable per call and via reports.cost_ratio config.
var DefaultCostRatio = decimal.NewFromFloat(0.7)

// ProductRef identifies a catalog product for a profitability lookup.
// SupplierID narrows the match when set; empty matches any supplier.
// Price is the current catalog unit price the cost heuristic is based on.
type ProductRef struct {
	Name       string          `json:"name"`
	SupplierID string          `json:"supplier_id,omitempty"`
	Price      decimal.Decimal `json:"price"`
}

// ProfitabilityReport is the heuristic margin estimate for one product.
type ProfitabilityReport struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity decimal.Decimal `json:"quantity"`

	// Orders is the number of orders containing at least one matching line.
	Orders int `json:"orders"`

	// Profitability is the estimated margin percentage, rounded to a whole
	// percent and floored at zero.
	Profitability int64 `json:"profitability"`

	AvgPrice decimal.Decimal `json:"avg_price"`
}

// EstimateProfitability scans the order history for lines matching the
// product and derives a margin estimate from realized average price against
// the heuristic cost price (catalog price * costRatio).
//
// avg_price falls back to the catalog price when nothing was sold; a zero
// average yields zero profitability rather than a division error.
func EstimateProfitability(product ProductRef, orders []v1.Order, costRatio decimal.Decimal) ProfitabilityReport {
	report := ProfitabilityReport{}

	for i := range orders {
		order := &orders[i]
		matched := false
		for j := range order.Items {
			item := &order.Items[j]
			if !matchesProduct(product, item) {
				continue
			}
			matched = true
			quantity := item.EffectiveQuantity()
			report.Revenue = report.Revenue.Add(item.Price.Mul(quantity))
			report.Quantity = report.Quantity.Add(quantity)
		}
		if matched {
			report.Orders++
		}
	}

	avgPrice := product.Price
	if report.Quantity.IsPositive() {
		avgPrice = report.Revenue.Div(report.Quantity)
	}
	report.AvgPrice = avgPrice

	if avgPrice.IsPositive() {
		costPrice := product.Price.Mul(costRatio)
		margin := avgPrice.Sub(costPrice).Div(avgPrice).Mul(hundred).Round(0)
		if margin.IsPositive() {
			report.Profitability = margin.IntPart()
		}
	}

	return report
}

func matchesProduct(product ProductRef, item *v1.OrderLineItem) bool {
	if item.ProductName != product.Name {
		return false
	}
	return product.SupplierID == "" || item.SupplierID == product.SupplierID
}
