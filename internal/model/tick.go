package model

// Tick is a single live price sample as delivered by the feed collaborator.
// Time is unix seconds; the raw feed may repeat or reorder timestamps —
// the stream buffer decides what is kept.
type Tick struct {
	Symbol string  `json:"symbol"`
	Time   int64   `json:"time"`
	Value  float64 `json:"value"`
}
