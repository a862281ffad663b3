package dto

// CoinResponse mirrors the subset of /coins/{id} the dashboard consumes.
// Prices are keyed by quote currency (e.g. "usd").
type CoinResponse struct {
	MarketData  MarketData `json:"market_data"`
	LastUpdated string     `json:"last_updated"`
}

// MarketData holds the current market scalars for the asset.
type MarketData struct {
	CurrentPrice      map[string]float64 `json:"current_price"`
	Change24h         float64            `json:"price_change_percentage_24h"`
	MarketCap         map[string]float64 `json:"market_cap"`
	TotalVolume       map[string]float64 `json:"total_volume"`
	CirculatingSupply float64            `json:"circulating_supply"`
}
