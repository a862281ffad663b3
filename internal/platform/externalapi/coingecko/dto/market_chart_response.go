// Package dto defines the wire types returned by the CoinGecko API.
package dto

// MarketChartResponse mirrors /coins/{id}/market_chart: three parallel arrays
// of [timestamp_ms, value] pairs.
type MarketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}
