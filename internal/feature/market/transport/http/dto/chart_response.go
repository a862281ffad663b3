// Package dto defines the JSON response shapes served to the dashboard UI.
package dto

// ErrorResponse is the uniform error body for parameter failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChartPoint is one derived-series row as served to the UI. Pointer fields
// render as null while their trailing window is not yet populated.
type ChartPoint struct {
	Date        string              `json:"date"`
	Price       float64             `json:"price"`
	Volume      float64             `json:"volume"`
	MarketCap   float64             `json:"market_cap"`
	PriceChange *float64            `json:"price_change"`
	SMA         map[string]*float64 `json:"sma"` // Price moving averages keyed by window size
	VolumeSMA   *float64            `json:"volume_sma_7"`
	Volatility  *float64            `json:"volatility"`
}

// ChartResponse carries the derived series plus the fallback tag the UI uses
// to show its "sample data" notice.
type ChartResponse struct {
	Fallback bool         `json:"fallback"`
	Reason   string       `json:"reason,omitempty"`
	Points   []ChartPoint `json:"points"`
}

// StatsResponse is the live (or fallback) snapshot of the asset.
type StatsResponse struct {
	Fallback          bool    `json:"fallback"`
	Reason            string  `json:"reason,omitempty"`
	CurrentPrice      float64 `json:"current_price"`
	Change24h         float64 `json:"price_change_24h"`
	MarketCap         float64 `json:"market_cap"`
	TotalVolume       float64 `json:"total_volume"`
	CirculatingSupply float64 `json:"circulating_supply"`
	LastUpdated       string  `json:"last_updated"`
}

// SummaryResponse is the metrics snapshot for a requested period.
type SummaryResponse struct {
	Fallback     bool    `json:"fallback"`
	Reason       string  `json:"reason,omitempty"`
	CurrentPrice float64 `json:"current_price"`
	Change24h    float64 `json:"change_24h"`
	MarketCap    float64 `json:"market_cap"`
	Volume       float64 `json:"volume"`
	PeriodReturn float64 `json:"period_return"`
	MaxPrice     float64 `json:"max_price"`
	MinPrice     float64 `json:"min_price"`
	AvgVolume    float64 `json:"avg_volume"`
	Volatility   float64 `json:"volatility"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
}
