package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"btc_dashboard/internal/feature/market/domain"
	"btc_dashboard/internal/feature/market/domain/entity"
)

const (
	// DefaultVolatilityWindow is the trailing row count for the rolling
	// volatility column.
	DefaultVolatilityWindow = 7
	// volumeSMAWindow is the trailing row count for the volume moving average.
	volumeSMAWindow = 7
	// tradingDaysPerYear annualizes the Sharpe ratio for a daily series.
	tradingDaysPerYear = 365
)

// DefaultSMAWindows are the price moving-average windows the dashboard shows.
var DefaultSMAWindows = []int{7, 30}

// Compute derives analytic columns from a series: a trailing simple moving
// average of price per requested window, the per-row simple return, a volume
// moving average and a rolling volatility over volWindow returns.
//
// Rows whose trailing window is not fully populated carry nil cells. An empty
// series yields an empty DerivedSeries, not an error. Compute never modifies
// its input and is idempotent.
func Compute(s entity.Series, windows []int, volWindow int) (entity.DerivedSeries, error) {
	for _, w := range windows {
		if w <= 0 {
			return nil, fmt.Errorf("%w: moving average window %d must be positive", domain.ErrInvalidRange, w)
		}
	}
	if volWindow <= 0 {
		return nil, fmt.Errorf("%w: volatility window %d must be positive", domain.ErrInvalidRange, volWindow)
	}

	ws := dedupeSorted(windows)
	out := make(entity.DerivedSeries, len(s))

	changes := make([]float64, len(s)) // changes[i] valid for i >= 1
	for i, p := range s {
		dp := entity.DerivedPoint{PricePoint: p, SMA: make(map[int]*float64, len(ws))}

		if i > 0 {
			changes[i] = (p.Price - s[i-1].Price) / s[i-1].Price
			dp.Change = ptr(changes[i])
		}
		for _, w := range ws {
			dp.SMA[w] = trailingMean(s, i, w, func(p entity.PricePoint) float64 { return p.Price })
		}
		dp.VolumeSMA = trailingMean(s, i, volumeSMAWindow, func(p entity.PricePoint) float64 { return p.Volume })

		// The return column starts at row 1, so the first fully populated
		// volatility window ends at row volWindow.
		if i >= volWindow {
			if sd, ok := sampleStd(changes[i-volWindow+1 : i+1]); ok {
				dp.Volatility = ptr(sd)
			}
		}
		out[i] = dp
	}
	return out, nil
}

// Summarize reduces a series to its point-in-time summary scalars.
// It fails with ErrInsufficientData on an empty series.
func Summarize(s entity.Series) (entity.MetricsSnapshot, error) {
	if s.Empty() {
		return entity.MetricsSnapshot{}, fmt.Errorf("%w: cannot summarize an empty series", domain.ErrInsufficientData)
	}

	last := s[len(s)-1]
	ref := nearestTo(s, last.Time.Add(-24*time.Hour))

	snap := entity.MetricsSnapshot{
		CurrentPrice: last.Price,
		Change24h:    (last.Price/ref.Price - 1) * 100,
		MarketCap:    last.MarketCap,
		Volume:       last.Volume,
		PeriodReturn: (last.Price/s[0].Price - 1) * 100,
		MaxPrice:     last.Price,
		MinPrice:     last.Price,
	}

	var volumeSum float64
	changes := make([]float64, 0, len(s)-1)
	for i, p := range s {
		snap.MaxPrice = math.Max(snap.MaxPrice, p.Price)
		snap.MinPrice = math.Min(snap.MinPrice, p.Price)
		volumeSum += p.Volume
		if i > 0 {
			changes = append(changes, (p.Price-s[i-1].Price)/s[i-1].Price)
		}
	}
	snap.AvgVolume = volumeSum / float64(len(s))

	if sd, ok := sampleStd(changes); ok {
		snap.Volatility = sd * 100
		if sd > 0 {
			snap.SharpeRatio = mean(changes) / sd * math.Sqrt(tradingDaysPerYear)
		}
	}
	return snap, nil
}

// FilterRange returns the subsequence with start <= timestamp <= end.
// It fails with ErrInvalidRange when start is after end; a range that
// excludes every point yields an empty series, not an error.
func FilterRange(s entity.Series, start, end time.Time) (entity.Series, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s",
			domain.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	out := make(entity.Series, 0, len(s))
	for _, p := range s {
		if !p.Time.Before(start) && !p.Time.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

// nearestTo returns the row whose timestamp is closest to target,
// preferring the earlier row on a tie.
func nearestTo(s entity.Series, target time.Time) entity.PricePoint {
	best := s[0]
	bestDist := absDuration(s[0].Time.Sub(target))
	for _, p := range s[1:] {
		if d := absDuration(p.Time.Sub(target)); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// trailingMean returns the mean of field over rows i-w+1..i, or nil when
// fewer than w rows precede row i.
func trailingMean(s entity.Series, i, w int, field func(entity.PricePoint) float64) *float64 {
	if i < w-1 {
		return nil
	}
	sum := 0.0
	for j := i - w + 1; j <= i; j++ {
		sum += field(s[j])
	}
	return ptr(sum / float64(w))
}

// sampleStd returns the sample standard deviation (n-1 denominator) of vs,
// reporting ok=false when fewer than two values are available.
func sampleStd(vs []float64) (float64, bool) {
	if len(vs) < 2 {
		return 0, false
	}
	m := mean(vs)
	var sum float64
	for _, v := range vs {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vs)-1)), true
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func dedupeSorted(windows []int) []int {
	ws := append([]int(nil), windows...)
	sort.Ints(ws)
	out := ws[:0]
	for i, w := range ws {
		if i == 0 || w != ws[i-1] {
			out = append(out, w)
		}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func ptr(v float64) *float64 { return &v }
