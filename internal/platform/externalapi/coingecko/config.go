// Package coingecko provides a client for the CoinGecko cryptocurrency market API.
package coingecko

import (
	"os"
	"time"
)

// DefaultBaseURL is the public CoinGecko v3 endpoint.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Config holds configuration for the CoinGecko API client.
type Config struct {
	BaseURL string        // Base URL for the API (e.g., "https://api.coingecko.com/api/v3")
	APIKey  string        // Optional demo API key, sent as the x-cg-demo-api-key header
	CoinID  string        // Asset identifier on CoinGecko (e.g., "bitcoin")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads CoinGecko configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL: os.Getenv("COINGECKO_BASE_URL"),
		APIKey:  os.Getenv("COINGECKO_API_KEY"),
		CoinID:  os.Getenv("COINGECKO_COIN_ID"),
		Timeout: 10 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CoinID == "" {
		cfg.CoinID = "bitcoin"
	}
	return cfg
}
