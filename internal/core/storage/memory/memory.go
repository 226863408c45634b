package memory

import (
	"context"
	"sort"
	"sync"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage"
)

// Store is an in-memory OrderStore for dev mode and tests. It mirrors the
// postgres adapter's semantics: idempotent saves keyed by order ID and a
// monotonic ingest sequence for cursor pagination.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]v1.Order
	nextSeq int64
}

func New() *Store {
	return &Store{byID: make(map[string]v1.Order)}
}

// SaveOrder stores a copy of the order and populates IngestSeq.
// Returns storage.ErrDuplicate when the ID was seen before.
func (s *Store) SaveOrder(_ context.Context, order *v1.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[order.ID]; exists {
		return storage.ErrDuplicate
	}

	s.nextSeq++
	order.IngestSeq = s.nextSeq

	stored := *order
	stored.Items = make([]v1.OrderLineItem, len(order.Items))
	copy(stored.Items, order.Items)
	s.byID[order.ID] = stored

	return nil
}

// ListOrdersAfterCursor returns orders with IngestSeq > cursor, ascending.
func (s *Store) ListOrdersAfterCursor(_ context.Context, cursor int64, limit int) ([]v1.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []v1.Order
	for _, order := range s.byID {
		if order.IngestSeq > cursor {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].IngestSeq < orders[j].IngestSeq
	})

	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// CountOrders returns the number of stored orders.
func (s *Store) CountOrders(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error {
	return nil
}
