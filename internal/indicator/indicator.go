// Package indicator provides technical indicator calculations over a streamed
// close-price series.
//
// All calculators are pure batch functions: they take an ordered
// []model.PricePoint, never mutate it, and return derived series aligned to
// the source timestamps (each output point carries the time of the last input
// point in its window). A series shorter than the indicator's minimum window
// yields a nil result, which callers must treat as "not yet computable",
// never as failure.
package indicator

import "tradeboard/internal/model"

// windowMinMax returns the lowest and highest value in points[lo:hi].
func windowMinMax(points []model.PricePoint, lo, hi int) (min, max float64) {
	min = points[lo].Value
	max = points[lo].Value
	for i := lo + 1; i < hi; i++ {
		v := points[i].Value
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
