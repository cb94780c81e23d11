package indicator

import "tradeboard/internal/model"

// SMA computes the Simple Moving Average over a trailing window.
// Uses a rolling sum so the whole pass is O(n) regardless of period.
// Returns nil when fewer than period points are available.
func SMA(points []model.PricePoint, period int) []model.PricePoint {
	if period < 1 || len(points) < period {
		return nil
	}

	out := make([]model.PricePoint, 0, len(points)-period+1)
	sum := 0.0
	for i, p := range points {
		sum += p.Value
		if i >= period {
			// Window slid past the oldest value
			sum -= points[i-period].Value
		}
		if i >= period-1 {
			out = append(out, model.PricePoint{
				Time:  p.Time,
				Value: sum / float64(period),
			})
		}
	}
	return out
}
