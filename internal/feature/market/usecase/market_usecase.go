// Package usecase implements the business logic for market data operations:
// fetching with a fallback guarantee and deriving analytic columns.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"btc_dashboard/internal/feature/market/domain"
	"btc_dashboard/internal/feature/market/domain/entity"
)

const (
	// MinWindowDays and MaxWindowDays bound the historical window accepted by
	// the upstream API. Values outside the bounds fail before any network call.
	MinWindowDays = 1
	MaxWindowDays = 365
)

// MarketRepository abstracts the live market data source.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	// GetMarketChart returns the historical series covering the trailing days.
	// bypassCache asks any caching layer to skip its read path.
	GetMarketChart(ctx context.Context, days int, bypassCache bool) (entity.Series, error)
	// GetCoinStats returns the current live snapshot of the asset.
	GetCoinStats(ctx context.Context, bypassCache bool) (entity.CoinStats, error)
}

// SampleRepository abstracts the bundled fallback dataset. Implementations
// must not depend on the network; loading the sample always succeeds.
type SampleRepository interface {
	LoadSeries(days int) (entity.Series, error)
	LoadStats() (entity.CoinStats, error)
}

// SeriesResult is the tagged outcome of a series fetch. Fallback is true when
// the live source failed and the bundled dataset was substituted; Reason then
// carries the logged failure.
type SeriesResult struct {
	Series   entity.Series
	Fallback bool
	Reason   string
}

// StatsResult is the tagged outcome of a live snapshot fetch.
type StatsResult struct {
	Stats    entity.CoinStats
	Fallback bool
	Reason   string
}

// ChartResult pairs a derived series with its fallback tag.
type ChartResult struct {
	Derived  entity.DerivedSeries
	Fallback bool
	Reason   string
}

// SummaryResult pairs a metrics snapshot with its fallback tag.
type SummaryResult struct {
	Snapshot entity.MetricsSnapshot
	Fallback bool
	Reason   string
}

// MarketUsecase orchestrates fetching, fallback substitution and metric
// derivation. Every call produces a fresh immutable Series; nothing is
// mutated across requests.
type MarketUsecase struct {
	market MarketRepository
	sample SampleRepository
}

// NewMarketUsecase creates a new MarketUsecase instance.
func NewMarketUsecase(market MarketRepository, sample SampleRepository) *MarketUsecase {
	return &MarketUsecase{market: market, sample: sample}
}

// FetchSeries fetches the historical series for the trailing windowDays.
// Out-of-bounds windows fail with ErrInvalidRange before any network call.
// Any live-source failure (network, status, malformed payload) is logged and
// absorbed by substituting the bundled dataset; the result is tagged so
// callers can surface fallback mode.
func (mu *MarketUsecase) FetchSeries(ctx context.Context, windowDays int, refresh bool) (SeriesResult, error) {
	if windowDays < MinWindowDays || windowDays > MaxWindowDays {
		return SeriesResult{}, fmt.Errorf("%w: window of %d days outside [%d, %d]",
			domain.ErrInvalidRange, windowDays, MinWindowDays, MaxWindowDays)
	}

	series, err := mu.market.GetMarketChart(ctx, windowDays, refresh)
	if err == nil {
		return SeriesResult{Series: series}, nil
	}
	slog.Warn("live market chart unavailable, serving sample data", "days", windowDays, "error", err)

	sample, serr := mu.sample.LoadSeries(windowDays)
	if serr != nil {
		// The sample dataset is compiled in and validated at startup.
		return SeriesResult{}, fmt.Errorf("sample dataset unavailable: %w", serr)
	}
	return SeriesResult{Series: sample, Fallback: true, Reason: err.Error()}, nil
}

// FetchCurrentStats fetches the live snapshot with the same fallback
// discipline as FetchSeries.
func (mu *MarketUsecase) FetchCurrentStats(ctx context.Context, refresh bool) (StatsResult, error) {
	stats, err := mu.market.GetCoinStats(ctx, refresh)
	if err == nil {
		return StatsResult{Stats: stats}, nil
	}
	slog.Warn("live coin stats unavailable, serving sample data", "error", err)

	sample, serr := mu.sample.LoadStats()
	if serr != nil {
		return StatsResult{}, fmt.Errorf("sample dataset unavailable: %w", serr)
	}
	return StatsResult{Stats: sample, Fallback: true, Reason: err.Error()}, nil
}

// GetChart fetches a series and derives the analytic columns for the
// requested moving-average windows.
func (mu *MarketUsecase) GetChart(ctx context.Context, windowDays int, windows []int, refresh bool) (ChartResult, error) {
	if len(windows) == 0 {
		windows = DefaultSMAWindows
	}
	res, err := mu.FetchSeries(ctx, windowDays, refresh)
	if err != nil {
		return ChartResult{}, err
	}
	derived, err := Compute(res.Series, windows, DefaultVolatilityWindow)
	if err != nil {
		return ChartResult{}, err
	}
	return ChartResult{Derived: derived, Fallback: res.Fallback, Reason: res.Reason}, nil
}

// GetSummary fetches a series, optionally narrows it to [start, end] and
// reduces it to summary scalars. A sub-range that excludes every point
// surfaces as ErrInsufficientData from the summarize step.
func (mu *MarketUsecase) GetSummary(ctx context.Context, windowDays int, start, end *time.Time, refresh bool) (SummaryResult, error) {
	res, err := mu.FetchSeries(ctx, windowDays, refresh)
	if err != nil {
		return SummaryResult{}, err
	}
	series := res.Series
	if start != nil && end != nil {
		if series, err = FilterRange(series, *start, *end); err != nil {
			return SummaryResult{}, err
		}
	}
	snap, err := Summarize(series)
	if err != nil {
		return SummaryResult{}, err
	}
	return SummaryResult{Snapshot: snap, Fallback: res.Fallback, Reason: res.Reason}, nil
}
