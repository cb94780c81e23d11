package indicator

import (
	"fmt"
	"log/slog"

	"tradeboard/internal/model"
)

// Processor turns the current price series and the active instance list into
// the full set of derived series to render. Designed for single-goroutine
// usage; recomputation is cheap enough to run on every accepted tick.
type Processor struct {
	log *slog.Logger

	// OnFault, when set, is invoked once per contained calculator fault.
	// Used to feed the fault counter metric.
	OnFault func(instanceID string)
}

// NewProcessor creates a Processor logging through the given slog logger.
func NewProcessor(log *slog.Logger) *Processor {
	return &Processor{log: log}
}

// Process computes derived series for every visible instance, in instance
// order. A faulting calculator is logged and its output omitted; the
// remaining instances are unaffected. Identical inputs produce identical
// output (no hidden state).
func (pr *Processor) Process(points []model.PricePoint, instances []model.IndicatorInstance) []model.DerivedSeries {
	out := make([]model.DerivedSeries, 0, len(instances))
	for _, inst := range instances {
		if !inst.Visible {
			continue
		}

		series, err := pr.computeOne(points, inst)
		if err != nil {
			pr.log.Error("indicator computation failed",
				"instance", inst.ID, "kind", inst.Kind, "err", err)
			if pr.OnFault != nil {
				pr.OnFault(inst.ID)
			}
			continue
		}
		out = append(out, series...)
	}
	return out
}

// computeOne dispatches one instance to its calculator. Any panic from a
// calculator (malformed parameters, unexpected values) is contained here and
// returned as an error so Process can skip just this instance.
func (pr *Processor) computeOne(points []model.PricePoint, inst model.IndicatorInstance) (series []model.DerivedSeries, err error) {
	defer func() {
		if r := recover(); r != nil {
			series = nil
			err = fmt.Errorf("calculator panic: %v", r)
		}
	}()

	params := mergedParams(inst)

	switch inst.Kind {
	case model.KindSMA:
		series = []model.DerivedSeries{
			mainSeries(inst, SMA(points, int(params["period"]))),
		}
	case model.KindEMA:
		series = []model.DerivedSeries{
			mainSeries(inst, EMA(points, int(params["period"]))),
		}
	case model.KindRSI:
		series = []model.DerivedSeries{
			mainSeries(inst, RSI(points, int(params["period"]))),
		}
	case model.KindBollinger:
		upper, middle, lower := Bollinger(points, int(params["period"]), params["stdDevMultiplier"])
		series = []model.DerivedSeries{
			subSeries(inst, "upper", "Upper", upper, 1),
			subSeries(inst, "middle", "Middle", middle, 2),
			subSeries(inst, "lower", "Lower", lower, 1),
		}
	case model.KindMACD:
		line, signal := MACD(points,
			int(params["fastPeriod"]), int(params["slowPeriod"]), int(params["signalPeriod"]))
		series = []model.DerivedSeries{
			subSeries(inst, "line", "Line", line, 2),
			subSeries(inst, "signal", "Signal", signal, 1),
		}
	case model.KindVWAP:
		series = []model.DerivedSeries{
			mainSeries(inst, VWAP(points)),
		}
	case model.KindATR:
		series = []model.DerivedSeries{
			mainSeries(inst, ATR(points, int(params["period"]))),
		}
	case model.KindStochastic:
		k, d := Stochastic(points, int(params["kPeriod"]), int(params["dPeriod"]))
		series = []model.DerivedSeries{
			subSeries(inst, "k", "%K", k, 2),
			subSeries(inst, "d", "%D", d, 1),
		}
	default:
		// Closed enumeration; an instance with an unknown kind cannot have
		// come through the registry.
		panic(fmt.Sprintf("indicator: unknown kind %q", inst.Kind))
	}
	return series, nil
}

// mergedParams overlays the instance parameters on the registry defaults.
// Missing keys fall back to defaults; unrecognized keys are carried along
// and simply never read.
func mergedParams(inst model.IndicatorInstance) model.Parameters {
	merged := Lookup(inst.Kind).Defaults
	for k, v := range inst.Parameters {
		merged[k] = v
	}
	return merged
}

func mainSeries(inst model.IndicatorInstance, points []model.PricePoint) model.DerivedSeries {
	return model.DerivedSeries{
		ID:          inst.ID,
		Label:       inst.DisplayName,
		Points:      points,
		Color:       inst.Color,
		StrokeWidth: 2,
	}
}

func subSeries(inst model.IndicatorInstance, suffix, label string, points []model.PricePoint, width int) model.DerivedSeries {
	return model.DerivedSeries{
		ID:          inst.ID + ":" + suffix,
		Label:       inst.DisplayName + " " + label,
		Points:      points,
		Color:       inst.Color,
		StrokeWidth: width,
	}
}
