package indicator

import (
	"math"

	"tradeboard/internal/model"
)

// ATR computes the Average True Range. Without a high/low/close triad the
// true range degrades to |price_t - price_{t-1}|; ATR is the SMA of those
// ranges over period. Needs period+1 points, first output at input index
// period.
func ATR(points []model.PricePoint, period int) []model.PricePoint {
	if period < 1 || len(points) < period+1 {
		return nil
	}

	ranges := make([]model.PricePoint, len(points)-1)
	for i := 1; i < len(points); i++ {
		ranges[i-1] = model.PricePoint{
			Time:  points[i].Time,
			Value: math.Abs(points[i].Value - points[i-1].Value),
		}
	}
	return SMA(ranges, period)
}
