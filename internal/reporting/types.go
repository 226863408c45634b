package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/redprice-lab/redprice-analytics/internal/core/analytics"
)

// ABCQueryRequest selects which classification report to build. Report names
// a built-in dimension (category, supplier, product) or a configured profile
// name; ValueField optionally overrides the value field for dimension
// requests.
type ABCQueryRequest struct {
	Report     string
	ValueField string
}

// ABCReportResponse is one full classification report plus the configuration
// that produced it, so a rendered dashboard can state its own provenance.
type ABCReportResponse struct {
	Profile     string                       `json:"profile"`
	Dimension   string                       `json:"dimension"`
	ValueField  string                       `json:"value_field"`
	AThreshold  decimal.Decimal              `json:"a_threshold"`
	BThreshold  decimal.Decimal              `json:"b_threshold"`
	GeneratedAt time.Time                    `json:"generated_at"`
	TotalOrders int                          `json:"total_orders"`
	Buckets     []analytics.ClassifiedBucket `json:"buckets"`
}

// TopProductsResponse is the ranked best-sellers report.
type TopProductsResponse struct {
	Limit       int                          `json:"limit"`
	GeneratedAt time.Time                    `json:"generated_at"`
	TotalOrders int                          `json:"total_orders"`
	Products    []analytics.AggregatedBucket `json:"products"`
}

// SummaryResponse is the whole-dataset KPI report.
type SummaryResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
	analytics.SummaryStats
}

// ProfitabilityResponse is the heuristic margin report for a single product.
type ProfitabilityResponse struct {
	Product     analytics.ProductRef `json:"product"`
	CostRatio   decimal.Decimal      `json:"cost_ratio"`
	GeneratedAt time.Time            `json:"generated_at"`
	analytics.ProfitabilityReport
}
