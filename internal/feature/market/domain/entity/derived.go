package entity

import "sort"

// DerivedPoint is a Series row augmented with computed analytic columns.
// A nil pointer marks a cell whose trailing window is not yet fully
// populated; such cells are never zero-filled.
type DerivedPoint struct {
	PricePoint
	Change     *float64         // Simple return vs the previous row
	SMA        map[int]*float64 // Trailing simple moving averages of price, keyed by window size
	VolumeSMA  *float64         // Trailing simple moving average of volume
	Volatility *float64         // Sample standard deviation of Change over the volatility window
}

// DerivedSeries is a Series augmented with computed columns, aligned by timestamp.
type DerivedSeries []DerivedPoint

// Windows returns the sorted moving-average window sizes present in the
// series, or nil for an empty series.
func (d DerivedSeries) Windows() []int {
	if len(d) == 0 {
		return nil
	}
	ws := make([]int, 0, len(d[0].SMA))
	for w := range d[0].SMA {
		ws = append(ws, w)
	}
	sort.Ints(ws)
	return ws
}
