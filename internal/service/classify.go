package service

import "sort"

// QuantileBreaks computes k ascending class-break thresholds over values.
//
// The method is index-stepped quantiles: sort ascending, step = n/k, take
// sorted[i*step] for i in 1..k-1 and the maximum as the final break. Upstream
// sources often label this "natural breaks" (Jenks); it is not — it does not
// minimize within-class variance. The quantile behavior is kept deliberately
// for compatibility with existing classed maps.
//
// values must be non-empty and finite (callers filter, see Thematic.Apply)
// and k >= 1. The last break always equals the maximum value. When n < k the
// sample index is clamped to n-1, so trailing breaks repeat the maximum.
func QuantileBreaks(values []float64, k int) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	step := n / k

	breaks := make([]float64, 0, k)
	for i := 1; i < k; i++ {
		idx := i * step
		if idx > n-1 {
			idx = n - 1
		}
		breaks = append(breaks, sorted[idx])
	}
	breaks = append(breaks, sorted[n-1])
	return breaks
}
