package indicator

import "tradeboard/internal/model"

// RSI computes the Relative Strength Index using Wilder's smoothing.
// The seed averages gains and losses over the first period deltas, so the
// first output aligns at input index period; every later point is smoothed
// with avg = (avg*(period-1) + x) / period. Needs period+1 points.
//
// A zero average loss saturates RS, so RSI is pinned to 100 instead of
// dividing by zero.
func RSI(points []model.PricePoint, period int) []model.PricePoint {
	if period < 1 || len(points) < period+1 {
		return nil
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		delta := points[i].Value - points[i-1].Value
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]model.PricePoint, 0, len(points)-period)
	out = append(out, model.PricePoint{
		Time:  points[period].Time,
		Value: rsiValue(avgGain, avgLoss),
	})

	p := float64(period)
	for i := period + 1; i < len(points); i++ {
		delta := points[i].Value - points[i-1].Value
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p

		out = append(out, model.PricePoint{
			Time:  points[i].Time,
			Value: rsiValue(avgGain, avgLoss),
		})
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
