package indicator

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"tradeboard/internal/model"
)

func testProcessor() *Processor {
	return NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testSeries(n int) []model.PricePoint {
	out := make([]model.PricePoint, n)
	for i := range out {
		out[i] = model.PricePoint{Time: int64(i), Value: 100 + float64(i%7)}
	}
	return out
}

func TestProcessor_SkipsInvisible(t *testing.T) {
	pr := testProcessor()
	instances := []model.IndicatorInstance{
		{ID: "sma-1", Kind: model.KindSMA, DisplayName: "SMA", Parameters: model.Parameters{"period": 3}, Visible: false},
		{ID: "ema-1", Kind: model.KindEMA, DisplayName: "EMA", Parameters: model.Parameters{"period": 3}, Visible: true},
	}
	out := pr.Process(testSeries(10), instances)
	if len(out) != 1 {
		t.Fatalf("series count: got %d, want 1", len(out))
	}
	if out[0].ID != "ema-1" {
		t.Errorf("id: got %q, want ema-1", out[0].ID)
	}
}

func TestProcessor_OutputOrderFollowsInstances(t *testing.T) {
	pr := testProcessor()
	instances := []model.IndicatorInstance{
		{ID: "boll-1", Kind: model.KindBollinger, DisplayName: "Bollinger Bands", Visible: true},
		{ID: "sma-1", Kind: model.KindSMA, DisplayName: "SMA", Visible: true},
		{ID: "stoch-1", Kind: model.KindStochastic, DisplayName: "Stochastic", Visible: true},
	}
	out := pr.Process(testSeries(40), instances)

	wantIDs := []string{"boll-1:upper", "boll-1:middle", "boll-1:lower", "sma-1", "stoch-1:k", "stoch-1:d"}
	if len(out) != len(wantIDs) {
		t.Fatalf("series count: got %d, want %d", len(out), len(wantIDs))
	}
	for i, want := range wantIDs {
		if out[i].ID != want {
			t.Errorf("series %d: id %q, want %q", i, out[i].ID, want)
		}
	}
}

func TestProcessor_DefaultsMergedUnderOverrides(t *testing.T) {
	pr := testProcessor()
	in := testSeries(30)

	// No parameters: registry default period 20 applies.
	out := pr.Process(in, []model.IndicatorInstance{
		{ID: "sma-1", Kind: model.KindSMA, DisplayName: "SMA", Visible: true},
	})
	if got, want := len(out[0].Points), len(in)-20+1; got != want {
		t.Errorf("default period: %d points, want %d", got, want)
	}

	// Override wins over the default.
	out = pr.Process(in, []model.IndicatorInstance{
		{ID: "sma-1", Kind: model.KindSMA, DisplayName: "SMA",
			Parameters: model.Parameters{"period": 5}, Visible: true},
	})
	if got, want := len(out[0].Points), len(in)-5+1; got != want {
		t.Errorf("override period: %d points, want %d", got, want)
	}
}

func TestProcessor_UnrecognizedParameterIgnored(t *testing.T) {
	pr := testProcessor()
	in := testSeries(30)
	out := pr.Process(in, []model.IndicatorInstance{
		{ID: "sma-1", Kind: model.KindSMA, DisplayName: "SMA",
			Parameters: model.Parameters{"period": 5, "wibble": 99}, Visible: true},
	})
	if got, want := len(out[0].Points), len(in)-5+1; got != want {
		t.Errorf("got %d points, want %d", got, want)
	}
}

func TestProcessor_FaultIsolation(t *testing.T) {
	pr := testProcessor()
	faults := 0
	pr.OnFault = func(string) { faults++ }

	// A kind outside the closed enumeration makes the dispatch panic;
	// the processor must contain it and keep computing the rest.
	instances := []model.IndicatorInstance{
		{ID: "sma-1", Kind: model.KindSMA, DisplayName: "SMA", Parameters: model.Parameters{"period": 3}, Visible: true},
		{ID: "bad-1", Kind: model.IndicatorKind("bogus"), DisplayName: "Bad", Visible: true},
		{ID: "ema-1", Kind: model.KindEMA, DisplayName: "EMA", Parameters: model.Parameters{"period": 3}, Visible: true},
	}
	out := pr.Process(testSeries(10), instances)
	if len(out) != 2 {
		t.Fatalf("series count: got %d, want 2", len(out))
	}
	if out[0].ID != "sma-1" || out[1].ID != "ema-1" {
		t.Errorf("ids: got %q,%q", out[0].ID, out[1].ID)
	}
	if faults != 1 {
		t.Errorf("fault count: got %d, want 1", faults)
	}
}

func TestProcessor_InsufficientDataEmitsEmptySeries(t *testing.T) {
	pr := testProcessor()
	out := pr.Process(testSeries(2), []model.IndicatorInstance{
		{ID: "rsi-1", Kind: model.KindRSI, DisplayName: "RSI", Visible: true},
	})
	if len(out) != 1 {
		t.Fatalf("series count: got %d, want 1", len(out))
	}
	if len(out[0].Points) != 0 {
		t.Errorf("expected empty points, got %d", len(out[0].Points))
	}
}

func TestProcessor_Idempotent(t *testing.T) {
	pr := testProcessor()
	in := testSeries(50)
	instances := []model.IndicatorInstance{
		{ID: "macd-1", Kind: model.KindMACD, DisplayName: "MACD", Visible: true},
		{ID: "rsi-1", Kind: model.KindRSI, DisplayName: "RSI", Visible: true},
		{ID: "vwap-1", Kind: model.KindVWAP, DisplayName: "VWAP", Visible: true},
	}
	first := pr.Process(in, instances)
	second := pr.Process(in, instances)
	if !reflect.DeepEqual(first, second) {
		t.Error("recomputation on unchanged inputs produced different output")
	}
}

func TestProcessor_DoesNotMutateInput(t *testing.T) {
	pr := testProcessor()
	in := testSeries(30)
	orig := make([]model.PricePoint, len(in))
	copy(orig, in)

	pr.Process(in, []model.IndicatorInstance{
		{ID: "boll-1", Kind: model.KindBollinger, DisplayName: "Bollinger Bands", Visible: true},
	})
	if !reflect.DeepEqual(in, orig) {
		t.Error("input series was mutated")
	}
}
