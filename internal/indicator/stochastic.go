package indicator

import "tradeboard/internal/model"

// Stochastic computes the Stochastic Oscillator:
//
//	%K = (close - min(window)) / (max(window) - min(window)) * 100
//	%D = SMA(%K, dPeriod)
//
// A zero-range window (max == min) pins %K at the neutral 50 instead of
// dividing by zero. k is nil below kPeriod points; d is nil until %K has
// dPeriod points.
func Stochastic(points []model.PricePoint, kPeriod, dPeriod int) (k, d []model.PricePoint) {
	if kPeriod < 1 || len(points) < kPeriod {
		return nil, nil
	}

	k = make([]model.PricePoint, 0, len(points)-kPeriod+1)
	for i := kPeriod - 1; i < len(points); i++ {
		lo, hi := windowMinMax(points, i-kPeriod+1, i+1)
		v := 50.0 // neutral when the window is flat
		if hi != lo {
			v = (points[i].Value - lo) / (hi - lo) * 100.0
		}
		k = append(k, model.PricePoint{Time: points[i].Time, Value: v})
	}

	d = SMA(k, dPeriod)
	return k, d
}
