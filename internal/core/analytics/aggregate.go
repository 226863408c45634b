package analytics

import (
	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

// Aggregate folds the order history into one bucket per distinct dimension
// key. The returned slice preserves first-seen order, which downstream stable
// sorts use as the deterministic tie-break for equal values.
//
// Revenue and quantity are exact decimal sums over the matching line items;
// OrderCount increments once per matching line item. The input is never
// mutated and the result is freshly allocated on every call.
func Aggregate(orders []v1.Order, dim Dimension) []AggregatedBucket {
	index := make(map[string]int)
	buckets := make([]AggregatedBucket, 0)

	for i := range orders {
		order := &orders[i]
		for j := range order.Items {
			item := &order.Items[j]

			key := dim.Key(order, item)
			idx, seen := index[key]
			if !seen {
				idx = len(buckets)
				index[key] = idx
				buckets = append(buckets, AggregatedBucket{
					Key:         key,
					DisplayName: dim.DisplayName(order, item),
				})
			}

			quantity := item.EffectiveQuantity()
			b := &buckets[idx]
			b.Revenue = b.Revenue.Add(item.Price.Mul(quantity))
			b.Quantity = b.Quantity.Add(quantity)
			b.OrderCount++
		}
	}

	return buckets
}
