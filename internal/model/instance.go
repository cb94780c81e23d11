package model

// IndicatorKind is the closed set of supported indicator families.
// Not extensible at runtime.
type IndicatorKind string

const (
	KindSMA        IndicatorKind = "sma"
	KindEMA        IndicatorKind = "ema"
	KindRSI        IndicatorKind = "rsi"
	KindBollinger  IndicatorKind = "bollinger"
	KindMACD       IndicatorKind = "macd"
	KindVWAP       IndicatorKind = "vwap"
	KindATR        IndicatorKind = "atr"
	KindStochastic IndicatorKind = "stochastic"
)

// Kinds lists every supported kind in display order.
func Kinds() []IndicatorKind {
	return []IndicatorKind{
		KindSMA, KindEMA, KindRSI, KindBollinger,
		KindMACD, KindVWAP, KindATR, KindStochastic,
	}
}

// Valid reports whether k is a member of the closed enumeration.
func (k IndicatorKind) Valid() bool {
	switch k {
	case KindSMA, KindEMA, KindRSI, KindBollinger,
		KindMACD, KindVWAP, KindATR, KindStochastic:
		return true
	}
	return false
}

// Parameters holds the numeric knobs of one indicator instance,
// e.g. {"period": 14} or {"fastPeriod": 12, "slowPeriod": 26, "signalPeriod": 9}.
// Unrecognized keys are ignored; missing keys fall back to registry defaults.
type Parameters map[string]float64

// Clone returns an independent copy. Clone of nil is an empty map.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IndicatorInstance is one user-configured indicator overlay on the chart.
// Owned by the dashboard session; the processor only reads it.
type IndicatorInstance struct {
	ID          string        `json:"id"`
	Kind        IndicatorKind `json:"kind"`
	DisplayName string        `json:"displayName"`
	Parameters  Parameters    `json:"parameters"`
	Color       string        `json:"color"`
	Visible     bool          `json:"visible"`
}
