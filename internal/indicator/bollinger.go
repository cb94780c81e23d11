package indicator

import (
	"math"

	"tradeboard/internal/model"
)

// Bollinger computes Bollinger Bands: middle is the SMA, upper and lower sit
// stdDevMult population standard deviations away. The three series are
// emitted aligned per timestamp, symmetric around the middle band.
// Returns nils below period points.
func Bollinger(points []model.PricePoint, period int, stdDevMult float64) (upper, middle, lower []model.PricePoint) {
	mid := SMA(points, period)
	if mid == nil {
		return nil, nil, nil
	}

	upper = make([]model.PricePoint, len(mid))
	lower = make([]model.PricePoint, len(mid))
	for i, m := range mid {
		// mid[i] covers input window [i, i+period)
		band := stdDevMult * populationStdDev(points[i:i+period], m.Value)
		upper[i] = model.PricePoint{Time: m.Time, Value: m.Value + band}
		lower[i] = model.PricePoint{Time: m.Time, Value: m.Value - band}
	}
	return upper, mid, lower
}

// populationStdDev computes the population standard deviation of a window
// around a known mean.
func populationStdDev(window []model.PricePoint, mean float64) float64 {
	if len(window) == 0 {
		return 0
	}
	variance := 0.0
	for _, p := range window {
		diff := p.Value - mean
		variance += diff * diff
	}
	variance /= float64(len(window))
	return math.Sqrt(variance)
}
