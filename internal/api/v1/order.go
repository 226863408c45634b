package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order as the checkout flow produced it, after
// normalization. All numeric fields are concrete decimals; defaulting of
// missing or malformed input happens once, in Normalize, never inside the
// analytics engine.
type Order struct {
	// ID is the unique order identifier. Assigned by ingestion when the
	// client does not supply one.
	ID string `json:"id"`

	// SupplierID/SupplierName identify the supplier the order was placed
	// with. Line items carry their own copy so product reports can attribute
	// mixed-supplier histories correctly.
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`

	// CreatedAt is when the order was placed (client clock, RFC3339).
	CreatedAt time.Time `json:"created_at"`

	Items []OrderLineItem `json:"items"`

	// Total is the order total as the cart computed it. Recomputed from line
	// items when the client omits it.
	Total decimal.Decimal `json:"total"`

	// IngestSeq is a monotonic sequence number assigned on ingestion.
	// Provides strict total ordering for cursor pagination.
	// Set by database (BIGSERIAL), not exposed in the public API.
	IngestSeq int64 `json:"-"`
}

// OrderLineItem is one product entry within an order. Quantities are
// pack-based: QuantityBoxes packs of QuantityPerBox units each.
type OrderLineItem struct {
	ProductName    string          `json:"product_name"`
	Category       string          `json:"category,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Model          string          `json:"model,omitempty"`
	Price          decimal.Decimal `json:"price"`
	QuantityBoxes  decimal.Decimal `json:"quantity_boxes"`
	QuantityPerBox decimal.Decimal `json:"quantity_per_box"`
	SupplierID     string          `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
}

// EffectiveQuantity is the number of units the line sold:
// quantity_boxes * quantity_per_box.
func (it OrderLineItem) EffectiveQuantity() decimal.Decimal {
	return it.QuantityBoxes.Mul(it.QuantityPerBox)
}

// Revenue is the line revenue: price * effective quantity.
func (it OrderLineItem) Revenue() decimal.Decimal {
	return it.Price.Mul(it.EffectiveQuantity())
}

// Validate ensures the order is in canonical form before persistence.
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("id is required")
	}
	if o.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}

// RawOrder is the wire shape accepted by the ingestion endpoint. Numeric
// fields are loosely typed: clients of the storefront have historically sent
// numbers as JSON numbers or strings, and missing fields are the norm rather
// than the exception.
type RawOrder struct {
	ID           string      `json:"id"`
	SupplierID   string      `json:"supplier_id"`
	SupplierName string      `json:"supplier_name"`
	CreatedAt    string      `json:"created_at"`
	Items        []RawLine   `json:"items"`
	Total        interface{} `json:"total"`
}

// RawLine is the wire shape of one line item.
type RawLine struct {
	ProductName    string      `json:"product_name"`
	Category       string      `json:"category"`
	Brand          string      `json:"brand"`
	Model          string      `json:"model"`
	Price          interface{} `json:"price"`
	QuantityBoxes  interface{} `json:"quantity_boxes"`
	QuantityPerBox interface{} `json:"quantity_per_box"`
	SupplierID     string      `json:"supplier_id"`
	SupplierName   string      `json:"supplier_name"`
}

// Normalize converts a raw order into the canonical typed record.
// Defaulting rules, applied exactly once here:
//   - price, quantity_boxes: missing, non-numeric or negative → 0
//   - quantity_per_box: missing, non-numeric or non-positive → 1
//     (a pack with no declared inner count sells as single units)
//   - created_at: RFC3339; unparseable or absent → fallback
//   - line supplier identity: inherited from the order when absent
//   - total: recomputed from line items when absent or non-numeric
//
// Normalize never fails: the reporting dashboard must not lose a whole
// history to one malformed record.
func (r RawOrder) Normalize(fallbackTime time.Time) Order {
	o := Order{
		ID:           r.ID,
		SupplierID:   r.SupplierID,
		SupplierName: r.SupplierName,
		CreatedAt:    fallbackTime,
		Items:        make([]OrderLineItem, 0, len(r.Items)),
	}

	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			o.CreatedAt = t
		}
	}

	lineTotal := decimal.Zero
	for _, raw := range r.Items {
		it := OrderLineItem{
			ProductName:    raw.ProductName,
			Category:       raw.Category,
			Brand:          raw.Brand,
			Model:          raw.Model,
			Price:          clampNonNegative(coerceDecimal(raw.Price)),
			QuantityBoxes:  clampNonNegative(coerceDecimal(raw.QuantityBoxes)),
			QuantityPerBox: coerceDecimal(raw.QuantityPerBox),
			SupplierID:     raw.SupplierID,
			SupplierName:   raw.SupplierName,
		}
		if !it.QuantityPerBox.IsPositive() {
			it.QuantityPerBox = decimal.NewFromInt(1)
		}
		if it.SupplierID == "" {
			it.SupplierID = r.SupplierID
		}
		if it.SupplierName == "" {
			it.SupplierName = r.SupplierName
		}
		lineTotal = lineTotal.Add(it.Revenue())
		o.Items = append(o.Items, it)
	}

	if total, ok := tryDecimal(r.Total); ok {
		o.Total = clampNonNegative(total)
	} else {
		o.Total = lineTotal
	}

	return o
}

// coerceDecimal pulls a numeric value out of a loosely-typed JSON field.
// Returns decimal.Zero for anything it cannot interpret as a number.
func coerceDecimal(v interface{}) decimal.Decimal {
	d, _ := tryDecimal(v)
	return d
}

func tryDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat(float64(val)), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
