package model

// SummaryStats are the derived headline numbers for a historical range,
// computed alongside the daily bars returned by the history store.
type SummaryStats struct {
	LatestClose float64 `json:"latestClose"`
	PriorClose  float64 `json:"priorClose"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
}

// HistoryResult is the pull-based historical collaborator response:
// ordered daily close points plus summary stats over the range.
type HistoryResult struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
	Stats  SummaryStats `json:"stats"`
}
