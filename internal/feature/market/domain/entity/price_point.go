// Package entity defines the domain models for the market feature.
package entity

import (
	"fmt"
	"time"

	"btc_dashboard/internal/feature/market/domain"
)

// PricePoint represents one observation of the Bitcoin market: a timestamp
// with the price, traded volume and market capitalization in the quote currency.
type PricePoint struct {
	Time      time.Time `json:"date"`       // Observation timestamp (unique, ascending within a Series)
	Price     float64   `json:"price"`      // Spot price in USD, always positive
	Volume    float64   `json:"volume"`     // Traded volume in USD, non-negative
	MarketCap float64   `json:"market_cap"` // Market capitalization in USD, non-negative
}

// Validate checks the per-field bounds of a single observation.
func (p PricePoint) Validate() error {
	if p.Time.IsZero() {
		return fmt.Errorf("%w: zero timestamp", domain.ErrInvalidSeries)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price %v must be positive", domain.ErrInvalidSeries, p.Price)
	}
	if p.Volume < 0 {
		return fmt.Errorf("%w: volume %v must be non-negative", domain.ErrInvalidSeries, p.Volume)
	}
	if p.MarketCap < 0 {
		return fmt.Errorf("%w: market cap %v must be non-negative", domain.ErrInvalidSeries, p.MarketCap)
	}
	return nil
}

// Series is an ordered sequence of PricePoint covering a requested window.
// A Series is created fresh per fetch or fallback load and is never mutated
// after being returned.
type Series []PricePoint

// NewSeries validates rows and the strict timestamp ordering invariant and
// returns the points as a Series. Rows are rejected, never corrected.
func NewSeries(points []PricePoint) (Series, error) {
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if i > 0 && !points[i-1].Time.Before(p.Time) {
			return nil, fmt.Errorf("%w: row %d timestamp %s not after %s",
				domain.ErrInvalidSeries, i, p.Time.Format(time.RFC3339), points[i-1].Time.Format(time.RFC3339))
		}
	}
	return Series(points), nil
}

// Empty reports whether the series holds no observations.
func (s Series) Empty() bool { return len(s) == 0 }
