package analytics

import (
	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// Supported grouping dimensions.
const (
	DimCategory = "category"
	DimSupplier = "supplier"
	DimProduct  = "product"
)

// Labels shown when a record carries no value for the dimension. These match
// what the storefront UI renders, so reports and catalog stay consistent.
const (
	FallbackCategory     = "Без категории"
	FallbackSupplierName = "Неизвестный поставщик"
)

// Dimension is a key-extraction strategy for aggregation. Key buckets a line
// item; DisplayName labels the bucket. Keeping both per-dimension avoids the
// three near-identical aggregation loops this replaced.
type Dimension struct {
	Name        string
	Key         func(o *v1.Order, it *v1.OrderLineItem) string
	DisplayName func(o *v1.Order, it *v1.OrderLineItem) string
}

// Dimensions is the registry of supported grouping dimensions.
// To add a new report dimension: add an entry here; aggregation and
// classification are generic over it.
var Dimensions = map[string]Dimension{
	DimCategory: {
		Name: DimCategory,
		Key: func(_ *v1.Order, it *v1.OrderLineItem) string {
			if it.Category == "" {
				return FallbackCategory
			}
			return it.Category
		},
		DisplayName: func(_ *v1.Order, it *v1.OrderLineItem) string {
			if it.Category == "" {
				return FallbackCategory
			}
			return it.Category
		},
	},
	DimSupplier: {
		Name: DimSupplier,
		Key: func(o *v1.Order, _ *v1.OrderLineItem) string {
			return o.SupplierID
		},
		DisplayName: func(o *v1.Order, _ *v1.OrderLineItem) string {
			if o.SupplierName == "" {
				return FallbackSupplierName
			}
			return o.SupplierName
		},
	},
	DimProduct: {
		Name: DimProduct,
		Key: func(_ *v1.Order, it *v1.OrderLineItem) string {
			return it.ProductName + "_" + it.SupplierID
		},
		DisplayName: func(_ *v1.Order, it *v1.OrderLineItem) string {
			return it.ProductName
		},
	},
}

// ValidDimension reports whether name is a registered dimension.
func ValidDimension(name string) bool {
	_, ok := Dimensions[name]
	return ok
}
