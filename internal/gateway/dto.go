package gateway

import "tradeboard/internal/model"

// pricePayload is the data body on the price channel.
type pricePayload struct {
	Symbol string           `json:"symbol"`
	Point  model.PricePoint `json:"point"`
}

// seriesPayload is the data body on the series channel: the full recompute
// output, in instance order.
type seriesPayload struct {
	Symbol string                `json:"symbol"`
	Series []model.DerivedSeries `json:"series"`
}

// seriesSnapshot is the REST response for /api/series.
type seriesSnapshot struct {
	Symbol string                `json:"symbol"`
	Points []model.PricePoint    `json:"points"`
	Series []model.DerivedSeries `json:"series"`
}

// historyLoadRequest selects which bars to pull into the live buffer.
type historyLoadRequest struct {
	Symbol string `json:"symbol"`
	From   int64  `json:"from"`
	To     int64  `json:"to"`
}

// barsUpsertRequest is the ingest shape for POST /api/history/bars.
type barsUpsertRequest struct {
	Symbol string             `json:"symbol"`
	Bars   []model.PricePoint `json:"bars"`
}
