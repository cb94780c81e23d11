package model

// PricePoint is one sample of a scalar close-price series.
// Time is unix seconds. Within a buffered series, Time values are unique
// and strictly increasing — the stream buffer enforces this on ingest.
type PricePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// DerivedSeries is the output of applying one indicator instance to the
// current price buffer. Multi-output indicators (Bollinger, MACD, Stochastic)
// emit several DerivedSeries sharing an ID prefix.
type DerivedSeries struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Points      []PricePoint `json:"points"`
	Color       string       `json:"color"`
	StrokeWidth int          `json:"strokeWidth"`
}
