package indicator

import "tradeboard/internal/model"

// VWAP computes a cumulative running mean of price. True VWAP weights by
// traded volume; the feed carries close prices only, so this is the
// unweighted variant. Defined from the very first point.
func VWAP(points []model.PricePoint) []model.PricePoint {
	if len(points) == 0 {
		return nil
	}

	out := make([]model.PricePoint, len(points))
	sum := 0.0
	for i, p := range points {
		sum += p.Value
		out[i] = model.PricePoint{Time: p.Time, Value: sum / float64(i+1)}
	}
	return out
}
