package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// line builds a normalized line item with unit packs, so price*boxes is the
// line revenue unless a per-box count is set explicitly.
func line(product, category, supplierID string, price, boxes int64) v1.OrderLineItem {
	return v1.OrderLineItem{
		ProductName:    product,
		Category:       category,
		Price:          decimal.NewFromInt(price),
		QuantityBoxes:  decimal.NewFromInt(boxes),
		QuantityPerBox: decimal.NewFromInt(1),
		SupplierID:     supplierID,
	}
}

func order(id, supplierID, supplierName string, items ...v1.OrderLineItem) v1.Order {
	return v1.Order{
		ID:           id,
		SupplierID:   supplierID,
		SupplierName: supplierName,
		CreatedAt:    time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Items:        items,
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
