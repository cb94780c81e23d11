package indicator

import "tradeboard/internal/model"

// EMA computes the Exponential Moving Average with multiplier 2/(period+1).
// The first emitted point is the SMA of the first period values (the seed),
// aligned at input index period-1. Returns nil below period points.
func EMA(points []model.PricePoint, period int) []model.PricePoint {
	if period < 1 || len(points) < period {
		return nil
	}

	k := 2.0 / float64(period+1)

	// SMA seed
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += points[i].Value
	}
	cur := sum / float64(period)

	out := make([]model.PricePoint, 0, len(points)-period+1)
	out = append(out, model.PricePoint{Time: points[period-1].Time, Value: cur})

	for i := period; i < len(points); i++ {
		cur = (points[i].Value-cur)*k + cur
		out = append(out, model.PricePoint{Time: points[i].Time, Value: cur})
	}
	return out
}
