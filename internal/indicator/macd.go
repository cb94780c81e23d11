package indicator

import "tradeboard/internal/model"

// MACD computes the Moving Average Convergence Divergence line and its
// signal line. The fast and slow EMAs start at different input offsets, so
// they are aligned by timestamp on the overlapping tail before subtracting;
// the signal is an EMA over the aligned MACD line only.
//
// line is nil below slowPeriod points; signal is nil until the MACD line
// itself has signalPeriod points.
func MACD(points []model.PricePoint, fastPeriod, slowPeriod, signalPeriod int) (line, signal []model.PricePoint) {
	fast := EMA(points, fastPeriod)
	slow := EMA(points, slowPeriod)
	if fast == nil || slow == nil {
		return nil, nil
	}

	line = alignedDiff(fast, slow)
	signal = EMA(line, signalPeriod)
	return line, signal
}

// alignedDiff subtracts b from a at matching timestamps. Both inputs are
// sorted by time ascending, so a single forward merge pass suffices.
func alignedDiff(a, b []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Time < b[j].Time:
			i++
		case a[i].Time > b[j].Time:
			j++
		default:
			out = append(out, model.PricePoint{
				Time:  a[i].Time,
				Value: a[i].Value - b[j].Value,
			})
			i++
			j++
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
