package usecase_test

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"btc_dashboard/internal/feature/market/domain"
	"btc_dashboard/internal/feature/market/domain/entity"
	"btc_dashboard/internal/feature/market/usecase"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func priceSeries(prices ...float64) entity.Series {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := make(entity.Series, len(prices))
	for i, p := range prices {
		s[i] = entity.PricePoint{
			Time:      base.AddDate(0, 0, i),
			Price:     p,
			Volume:    1e10 + float64(i)*1e8,
			MarketCap: 1e12,
		}
	}
	return s
}

func TestCompute_SMA(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 101, 99, 102, 103, 101, 104, 105, 103, 106)

	ds, err := usecase.Compute(s, []int{3}, usecase.DefaultVolatilityWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds) != len(s) {
		t.Fatalf("derived length = %d, want %d", len(ds), len(s))
	}

	// The first w-1 rows have no fully populated trailing window.
	for i := 0; i < 2; i++ {
		if ds[i].SMA[3] != nil {
			t.Errorf("row %d: expected nil SMA, got %f", i, *ds[i].SMA[3])
		}
	}

	wantSMA := []float64{
		(100 + 101 + 99) / 3.0,
		(101 + 99 + 102) / 3.0,
		(99 + 102 + 103) / 3.0,
		(102 + 103 + 101) / 3.0,
		(103 + 101 + 104) / 3.0,
		(101 + 104 + 105) / 3.0,
		(104 + 105 + 103) / 3.0,
		(105 + 103 + 106) / 3.0,
	}
	for i, want := range wantSMA {
		got := ds[i+2].SMA[3]
		if got == nil {
			t.Fatalf("row %d: expected SMA %f, got nil", i+2, want)
		}
		if !almostEqual(*got, want) {
			t.Errorf("row %d: expected SMA %f, got %f", i+2, want, *got)
		}
	}
}

func TestCompute_Change(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 110, 99)
	ds, err := usecase.Compute(s, []int{2}, usecase.DefaultVolatilityWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ds[0].Change != nil {
		t.Errorf("row 0: expected nil change, got %f", *ds[0].Change)
	}
	if got := ds[1].Change; got == nil || !almostEqual(*got, 0.1) {
		t.Errorf("row 1: expected change 0.1, got %v", got)
	}
	if got := ds[2].Change; got == nil || !almostEqual(*got, -0.1) {
		t.Errorf("row 2: expected change -0.1, got %v", got)
	}
}

func TestCompute_Volatility(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 102, 101, 105, 104, 106)
	volWindow := 3
	ds, err := usecase.Compute(s, []int{7}, volWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Returns start at row 1, so the first full volatility window ends at
	// row volWindow.
	for i := 0; i < volWindow; i++ {
		if ds[i].Volatility != nil {
			t.Errorf("row %d: expected nil volatility, got %f", i, *ds[i].Volatility)
		}
	}

	changes := make([]float64, len(s))
	for i := 1; i < len(s); i++ {
		changes[i] = (s[i].Price - s[i-1].Price) / s[i-1].Price
	}
	for i := volWindow; i < len(s); i++ {
		window := changes[i-volWindow+1 : i+1]
		m := 0.0
		for _, v := range window {
			m += v
		}
		m /= float64(len(window))
		var sum float64
		for _, v := range window {
			sum += (v - m) * (v - m)
		}
		want := math.Sqrt(sum / float64(len(window)-1))

		got := ds[i].Volatility
		if got == nil {
			t.Fatalf("row %d: expected volatility %f, got nil", i, want)
		}
		if !almostEqual(*got, want) {
			t.Errorf("row %d: expected volatility %f, got %f", i, want, *got)
		}
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	t.Parallel()

	ds, err := usecase.Compute(nil, []int{7, 30}, usecase.DefaultVolatilityWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds) != 0 {
		t.Errorf("expected empty derived series, got %d rows", len(ds))
	}
}

func TestCompute_InvalidWindows(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 101)

	tests := []struct {
		name      string
		windows   []int
		volWindow int
	}{
		{"zero sma window", []int{0}, 7},
		{"negative sma window", []int{-3}, 7},
		{"zero volatility window", []int{7}, 0},
		{"negative volatility window", []int{7}, -1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := usecase.Compute(s, tt.windows, tt.volWindow); !errors.Is(err, domain.ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestCompute_WindowLargerThanSeries(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 101, 102)
	ds, err := usecase.Compute(s, []int{30}, usecase.DefaultVolatilityWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range ds {
		if p.SMA[30] != nil {
			t.Errorf("row %d: expected nil SMA for an unpopulated window", i)
		}
	}
}

func TestCompute_DuplicateWindowsCollapse(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 101, 102, 103, 104)
	ds, err := usecase.Compute(s, []int{3, 3, 2}, usecase.DefaultVolatilityWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ds.Windows(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("windows = %v, want [2 3]", got)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 101, 99, 102, 103, 101, 104)
	a, err := usecase.Compute(s, []int{3}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := usecase.Compute(s, []int{3}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated computation over the same input must agree")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := entity.Series{
		{Time: base, Price: 100, Volume: 1e10, MarketCap: 1e12},
		{Time: base.Add(24 * time.Hour), Price: 110, Volume: 2e10, MarketCap: 1.1e12},
	}

	snap, err := usecase.Summarize(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.CurrentPrice != 110 {
		t.Errorf("current price = %f, want 110", snap.CurrentPrice)
	}
	// The row 24h before the tail is the first row, so the change is +10%.
	if !almostEqual(snap.Change24h, 10) {
		t.Errorf("24h change = %f, want 10", snap.Change24h)
	}
	if !almostEqual(snap.PeriodReturn, 10) {
		t.Errorf("period return = %f, want 10", snap.PeriodReturn)
	}
	if snap.MaxPrice != 110 || snap.MinPrice != 100 {
		t.Errorf("max/min = %f/%f, want 110/100", snap.MaxPrice, snap.MinPrice)
	}
	if !almostEqual(snap.AvgVolume, 1.5e10) {
		t.Errorf("avg volume = %f, want 1.5e10", snap.AvgVolume)
	}
	if snap.MarketCap != 1.1e12 {
		t.Errorf("market cap = %f, want 1.1e12", snap.MarketCap)
	}
	// A single return has no sample deviation.
	if snap.Volatility != 0 || snap.SharpeRatio != 0 {
		t.Errorf("volatility/sharpe = %f/%f, want zero", snap.Volatility, snap.SharpeRatio)
	}
}

func TestSummarize_NearestReferencePrefersEarlierOnTie(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// Both neighbours sit 12h from the 24h-ago target.
	s := entity.Series{
		{Time: base, Price: 100, Volume: 1e10, MarketCap: 1e12},
		{Time: base.Add(24 * time.Hour), Price: 200, Volume: 1e10, MarketCap: 1e12},
		{Time: base.Add(36 * time.Hour), Price: 300, Volume: 1e10, MarketCap: 1e12},
	}

	snap, err := usecase.Summarize(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Target is base+12h; base and base+24h tie, the earlier row wins.
	want := (300.0/100.0 - 1) * 100
	if !almostEqual(snap.Change24h, want) {
		t.Errorf("24h change = %f, want %f", snap.Change24h, want)
	}
}

func TestSummarize_VolatilityAndSharpe(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 102, 101, 105)

	changes := []float64{0.02, (101.0 - 102.0) / 102.0, (105.0 - 101.0) / 101.0}
	m := (changes[0] + changes[1] + changes[2]) / 3
	var sq float64
	for _, c := range changes {
		sq += (c - m) * (c - m)
	}
	sd := math.Sqrt(sq / 2)

	snap, err := usecase.Summarize(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(snap.Volatility, sd*100) {
		t.Errorf("volatility = %f, want %f", snap.Volatility, sd*100)
	}
	wantSharpe := m / sd * math.Sqrt(365)
	if !almostEqual(snap.SharpeRatio, wantSharpe) {
		t.Errorf("sharpe = %f, want %f", snap.SharpeRatio, wantSharpe)
	}
}

func TestSummarize_EmptySeries(t *testing.T) {
	t.Parallel()

	if _, err := usecase.Summarize(nil); !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFilterRange(t *testing.T) {
	t.Parallel()

	s := priceSeries(100, 101, 102, 103, 104)

	t.Run("inclusive bounds", func(t *testing.T) {
		t.Parallel()

		got, err := usecase.FilterRange(s, s[1].Time, s[3].Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, s[1:4]) {
			t.Errorf("filtered = %v, want rows 1..3", got)
		}
	})

	t.Run("range excluding all rows", func(t *testing.T) {
		t.Parallel()

		start := s[len(s)-1].Time.AddDate(1, 0, 0)
		got, err := usecase.FilterRange(s, start, start.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty result, got %d rows", len(got))
		}
	})

	t.Run("start after end", func(t *testing.T) {
		t.Parallel()

		if _, err := usecase.FilterRange(s, s[3].Time, s[1].Time); !errors.Is(err, domain.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		once, err := usecase.FilterRange(s, s[1].Time, s[3].Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := usecase.FilterRange(once, s[1].Time, s[3].Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Error("filtering an already filtered series must not change it")
		}
	})
}
