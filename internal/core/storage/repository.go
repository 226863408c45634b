package storage

import (
	"context"
	"errors"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// ErrDuplicate is returned when an order with the same ID already exists.
var ErrDuplicate = errors.New("order already exists")

// OrderStore defines the interface for persisting and retrieving the order
// history. The analytics engine never sees this interface: callers load a
// full snapshot and hand it to the pure functions.
type OrderStore interface {
	// SaveOrder persists an order and populates IngestSeq.
	// Idempotent on order ID: a replayed order returns ErrDuplicate.
	SaveOrder(ctx context.Context, order *v1.Order) error

	// ListOrdersAfterCursor fetches orders after a cursor (ingest_seq) in
	// strict total order. cursor=0 means "from the beginning". This is how
	// report builders page through the full history without batch-boundary
	// gaps.
	ListOrdersAfterCursor(ctx context.Context, cursor int64, limit int) ([]v1.Order, error)

	// CountOrders returns the total number of stored orders.
	CountOrders(ctx context.Context) (int64, error)

	// Ping reports storage health.
	Ping(ctx context.Context) error
}
