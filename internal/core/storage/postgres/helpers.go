package postgres

import (
	"encoding/json"
	"fmt"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// marshalItemsJSON marshals an order's line items for the JSONB column.
// An order without items stores an empty array, never SQL NULL, so scans
// round-trip without nil checks.
func marshalItemsJSON(order *v1.Order) ([]byte, error) {
	items := order.Items
	if items == nil {
		items = []v1.OrderLineItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	return itemsJSON, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanOrderRow scans a database row into an Order struct, unmarshalling the
// JSONB line items. Compatible with both sql.Row and sql.Rows.
func scanOrderRow(row scanner) (*v1.Order, error) {
	var order v1.Order
	var itemsJSON []byte

	err := row.Scan(
		&order.ID,
		&order.SupplierID,
		&order.SupplierName,
		&order.CreatedAt,
		&order.Total,
		&itemsJSON,
		&order.IngestSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order row: %w", err)
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}

	return &order, nil
}
