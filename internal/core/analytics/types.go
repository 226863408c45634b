package analytics

import (
	"github.com/shopspring/decimal"
)

// ABC classes, from most to least significant contribution.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
)

// Value fields a classification or ranking can run on.
const (
	ValueRevenue  = "revenue"
	ValueQuantity = "quantity"
)

// ValueFn selects the numeric field a classification run sorts and
// accumulates on. Registered in Values; the classifier itself is generic.
type ValueFn func(b AggregatedBucket) decimal.Decimal

// Values is the registry of supported classification value fields.
// To add a new field: add an entry here, nothing else changes.
var Values = map[string]ValueFn{
	ValueRevenue:  func(b AggregatedBucket) decimal.Decimal { return b.Revenue },
	ValueQuantity: func(b AggregatedBucket) decimal.Decimal { return b.Quantity },
}

// ValidValueField reports whether name is a registered value field.
func ValidValueField(name string) bool {
	_, ok := Values[name]
	return ok
}

// Thresholds are the inclusive cumulative-percentage boundaries of the ABC
// partition: cumulative ≤ A → class A, ≤ B → class B, above → class C.
type Thresholds struct {
	A decimal.Decimal
	B decimal.Decimal
}

// DefaultThresholds is the classic 80/15/5 Pareto split.
var DefaultThresholds = Thresholds{
	A: decimal.NewFromInt(80),
	B: decimal.NewFromInt(95),
}

// AggregatedBucket is the tally of revenue, quantity and line-item count for
// one distinct value of a grouping dimension. Ephemeral: built fresh on every
// report request, never persisted.
type AggregatedBucket struct {
	// Key is the dimension key: a category name, a supplier ID, or a
	// product-name/supplier-ID composite.
	Key string `json:"key"`

	// DisplayName is the human-readable label for the key.
	DisplayName string `json:"display_name"`

	Revenue  decimal.Decimal `json:"revenue"`
	Quantity decimal.Decimal `json:"quantity"`

	// OrderCount counts contributing line items, not distinct orders.
	OrderCount int `json:"order_count"`
}

// ClassifiedBucket is an aggregated bucket with its ABC class and share
// bookkeeping attached.
type ClassifiedBucket struct {
	AggregatedBucket

	Class                string          `json:"abc_class"`
	PercentageOfTotal    decimal.Decimal `json:"percentage_of_total"`
	CumulativePercentage decimal.Decimal `json:"cumulative_percentage"`
}

// SummaryStats are whole-dataset KPIs computed directly from raw orders.
type SummaryStats struct {
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}
