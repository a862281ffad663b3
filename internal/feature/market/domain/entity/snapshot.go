package entity

import "time"

// MetricsSnapshot holds point-in-time summary scalars derived from a Series.
// Percentages are expressed as e.g. +10.0 for a 10% move.
type MetricsSnapshot struct {
	CurrentPrice float64 `json:"current_price"` // Last row's price
	Change24h    float64 `json:"change_24h"`    // Change vs the row nearest 24 hours earlier, percent
	MarketCap    float64 `json:"market_cap"`    // Last row's market cap
	Volume       float64 `json:"volume"`        // Last row's volume
	PeriodReturn float64 `json:"period_return"` // First-to-last change over the series, percent
	MaxPrice     float64 `json:"max_price"`
	MinPrice     float64 `json:"min_price"`
	AvgVolume    float64 `json:"avg_volume"`
	Volatility   float64 `json:"volatility"`   // Std deviation of simple returns over the whole series, percent
	SharpeRatio  float64 `json:"sharpe_ratio"` // Annualized mean/std of simple returns, 0 when std is 0
}

// CoinStats is the live snapshot of the asset as reported by the upstream API.
type CoinStats struct {
	CurrentPrice      float64   `json:"current_price"`
	Change24h         float64   `json:"price_change_24h"` // Percent
	MarketCap         float64   `json:"market_cap"`
	TotalVolume       float64   `json:"total_volume"`
	CirculatingSupply float64   `json:"circulating_supply"`
	LastUpdated       time.Time `json:"last_updated"`
}
