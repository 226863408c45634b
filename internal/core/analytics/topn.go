package analytics

import (
	"sort"
)

// TopN returns the n buckets with the highest revenue, descending, without
// classification fields. n ≤ 0 yields an empty slice; n beyond the collection
// size yields the whole collection. Ties keep their relative input order.
func TopN(buckets []AggregatedBucket, n int) []AggregatedBucket {
	if n <= 0 {
		return []AggregatedBucket{}
	}

	sorted := make([]AggregatedBucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
