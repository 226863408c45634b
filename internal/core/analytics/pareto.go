package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Classify runs an ABC (Pareto) analysis over the buckets: stable descending
// sort by the selected value, cumulative-share bookkeeping, then the class
// partition on cumulative percentage with inclusive boundaries. The bucket
// that pushes the cumulative share past a threshold still belongs to the
// class below it.
//
// Output order is the sorted (descending) order and is meaningful to callers.
// Ties keep their relative input order (stable sort), so aggregation's
// first-seen ordering makes the whole pipeline deterministic.
//
// A zero total degrades every share to 0 and every bucket to class C; the
// division is guarded, never performed.
func Classify(buckets []AggregatedBucket, value ValueFn, th Thresholds) []ClassifiedBucket {
	sorted := make([]AggregatedBucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return value(sorted[i]).GreaterThan(value(sorted[j]))
	})

	total := decimal.Zero
	for _, b := range sorted {
		total = total.Add(value(b))
	}

	out := make([]ClassifiedBucket, 0, len(sorted))
	cumulative := decimal.Zero

	for _, b := range sorted {
		cumulative = cumulative.Add(value(b))

		classified := ClassifiedBucket{
			AggregatedBucket:     b,
			Class:                ClassC,
			PercentageOfTotal:    decimal.Zero,
			CumulativePercentage: decimal.Zero,
		}

		if total.IsPositive() {
			classified.PercentageOfTotal = value(b).Div(total).Mul(hundred)
			classified.CumulativePercentage = cumulative.Div(total).Mul(hundred)

			switch {
			case classified.CumulativePercentage.LessThanOrEqual(th.A):
				classified.Class = ClassA
			case classified.CumulativePercentage.LessThanOrEqual(th.B):
				classified.Class = ClassB
			}
		}

		out = append(out, classified)
	}

	return out
}
