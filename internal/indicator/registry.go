package indicator

import (
	"fmt"

	"tradeboard/internal/model"
)

// Descriptor is the static metadata for one indicator kind: display name,
// default parameters, default chart color and a one-line description.
// It is the single source of truth for both the editing UI and the agent
// tool defaults.
type Descriptor struct {
	Kind        model.IndicatorKind `json:"kind"`
	DisplayName string              `json:"displayName"`
	Defaults    model.Parameters    `json:"defaults"`
	Color       string              `json:"color"`
	Description string              `json:"description"`
}

var registry = map[model.IndicatorKind]Descriptor{
	model.KindSMA: {
		Kind:        model.KindSMA,
		DisplayName: "SMA",
		Defaults:    model.Parameters{"period": 20},
		Color:       "#2962FF",
		Description: "Simple moving average of the close price",
	},
	model.KindEMA: {
		Kind:        model.KindEMA,
		DisplayName: "EMA",
		Defaults:    model.Parameters{"period": 20},
		Color:       "#FF6D00",
		Description: "Exponential moving average, weighted toward recent prices",
	},
	model.KindRSI: {
		Kind:        model.KindRSI,
		DisplayName: "RSI",
		Defaults:    model.Parameters{"period": 14},
		Color:       "#9C27B0",
		Description: "Relative strength index, bounded momentum oscillator (0-100)",
	},
	model.KindBollinger: {
		Kind:        model.KindBollinger,
		DisplayName: "Bollinger Bands",
		Defaults:    model.Parameters{"period": 20, "stdDevMultiplier": 2},
		Color:       "#2196F3",
		Description: "Volatility envelope of standard-deviation bands around an SMA",
	},
	model.KindMACD: {
		Kind:        model.KindMACD,
		DisplayName: "MACD",
		Defaults:    model.Parameters{"fastPeriod": 12, "slowPeriod": 26, "signalPeriod": 9},
		Color:       "#E91E63",
		Description: "Moving average convergence divergence with signal line",
	},
	model.KindVWAP: {
		Kind:        model.KindVWAP,
		DisplayName: "VWAP",
		Defaults:    model.Parameters{},
		Color:       "#00897B",
		Description: "Running average price (unweighted, volume unavailable)",
	},
	model.KindATR: {
		Kind:        model.KindATR,
		DisplayName: "ATR",
		Defaults:    model.Parameters{"period": 14},
		Color:       "#795548",
		Description: "Average true range, volatility from tick-to-tick price moves",
	},
	model.KindStochastic: {
		Kind:        model.KindStochastic,
		DisplayName: "Stochastic",
		Defaults:    model.Parameters{"kPeriod": 14, "dPeriod": 3},
		Color:       "#43A047",
		Description: "Stochastic oscillator comparing close to its recent range (%K/%D)",
	},
}

// Lookup returns the descriptor for a kind. The enumeration is closed, so an
// unknown kind is a programming error and panics.
func Lookup(kind model.IndicatorKind) Descriptor {
	desc, ok := registry[kind]
	if !ok {
		panic(fmt.Sprintf("indicator: unknown kind %q", kind))
	}
	desc.Defaults = desc.Defaults.Clone()
	return desc
}

// Registry returns all descriptors in display order.
func Registry() []Descriptor {
	kinds := model.Kinds()
	out := make([]Descriptor, len(kinds))
	for i, k := range kinds {
		out[i] = Lookup(k)
	}
	return out
}
