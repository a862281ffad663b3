// Package fallback serves the bundled sample dataset used when the live
// market source is unavailable. The dataset is compiled into the binary, so
// loading it never depends on the environment and is byte-stable across runs.
package fallback

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"btc_dashboard/internal/feature/market/domain/entity"
	"btc_dashboard/internal/feature/market/usecase"
)

//go:embed data/bitcoin_sample.csv
var sampleCSV []byte

// SampleRepository is a SampleRepository implementation backed by a static
// daily CSV dataset (columns: date, price, volume, market_cap).
type SampleRepository struct {
	points []entity.PricePoint
}

// Compile-time check that SampleRepository implements usecase.SampleRepository.
var _ usecase.SampleRepository = (*SampleRepository)(nil)

// NewSampleRepository parses the bundled dataset, or the CSV at path when it
// is non-empty. Parse failures surface here, at startup, never at fetch time.
func NewSampleRepository(path string) (*SampleRepository, error) {
	raw := sampleCSV
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sample dataset %s: %w", path, err)
		}
		slog.Info("using sample dataset override", "path", path)
		raw = b
	}

	points, err := parseCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse sample dataset: %w", err)
	}
	if _, err := entity.NewSeries(points); err != nil {
		return nil, fmt.Errorf("validate sample dataset: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("sample dataset is empty")
	}
	return &SampleRepository{points: points}, nil
}

// LoadSeries returns the tail of the dataset best matching a trailing window
// of days. A days-day daily window spans days+1 samples; if the dataset is
// shorter the whole dataset is returned rather than padding with fabricated
// rows.
func (r *SampleRepository) LoadSeries(days int) (entity.Series, error) {
	n := days + 1
	if n > len(r.points) {
		n = len(r.points)
	}
	tail := r.points[len(r.points)-n:]
	out := make(entity.Series, len(tail))
	copy(out, tail)
	return out, nil
}

// LoadStats derives a current snapshot from the dataset tail so that
// fallback stats agree with the fallback series.
func (r *SampleRepository) LoadStats() (entity.CoinStats, error) {
	last := r.points[len(r.points)-1]
	change := 0.0
	if len(r.points) > 1 {
		prev := r.points[len(r.points)-2]
		change = (last.Price/prev.Price - 1) * 100
	}
	supply := 0.0
	if last.Price > 0 {
		supply = last.MarketCap / last.Price
	}
	return entity.CoinStats{
		CurrentPrice:      last.Price,
		Change24h:         change,
		MarketCap:         last.MarketCap,
		TotalVolume:       last.Volume,
		CirculatingSupply: supply,
		LastUpdated:       last.Time,
	}, nil
}

// parseCSV reads date,price,volume,market_cap rows. Dates are calendar days.
func parseCSV(r io.Reader) ([]entity.PricePoint, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	points := make([]entity.PricePoint, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+1, len(rec))
		}
		tm, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+1, rec[0], err)
		}
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse price %q: %w", i+1, rec[1], err)
		}
		volume, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse volume %q: %w", i+1, rec[2], err)
		}
		mcap, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse market cap %q: %w", i+1, rec[3], err)
		}
		points = append(points, entity.PricePoint{Time: tm.UTC(), Price: price, Volume: volume, MarketCap: mcap})
	}
	return points, nil
}
