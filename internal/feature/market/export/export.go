// Package export serializes derived series to delimited (CSV) and structured
// (JSON) formats for user download. Both formats round-trip losslessly:
// timestamps use RFC 3339 with nanoseconds and floats use the shortest
// representation that parses back to the same value. Undefined cells are
// empty CSV fields and JSON nulls.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"btc_dashboard/internal/feature/market/domain/entity"
)

const (
	colDate       = "date"
	colPrice      = "price"
	colVolume     = "volume"
	colMarketCap  = "market_cap"
	colChange     = "price_change"
	colVolumeSMA  = "volume_sma_7"
	colVolatility = "volatility"

	smaColPrefix = "price_sma_"

	timeLayout = time.RFC3339Nano
)

// smaCol names the moving-average column for a window size.
func smaCol(w int) string { return smaColPrefix + strconv.Itoa(w) }

// columns builds the header for a set of moving-average windows.
func columns(windows []int) []string {
	cols := []string{colDate, colPrice, colVolume, colMarketCap, colChange}
	for _, w := range windows {
		cols = append(cols, smaCol(w))
	}
	return append(cols, colVolumeSMA, colVolatility)
}

// WriteCSV writes the derived series as delimited rows with a header line.
func WriteCSV(w io.Writer, ds entity.DerivedSeries) error {
	cw := csv.NewWriter(w)
	windows := ds.Windows()
	if err := cw.Write(columns(windows)); err != nil {
		return err
	}
	for _, p := range ds {
		rec := []string{
			p.Time.Format(timeLayout),
			formatFloat(p.Price),
			formatFloat(p.Volume),
			formatFloat(p.MarketCap),
			formatOpt(p.Change),
		}
		for _, win := range windows {
			rec = append(rec, formatOpt(p.SMA[win]))
		}
		rec = append(rec, formatOpt(p.VolumeSMA), formatOpt(p.Volatility))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows produced by WriteCSV back into a derived series,
// discovering the moving-average windows from the header.
func ReadCSV(r io.Reader) (entity.DerivedSeries, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	fixed := []string{colDate, colPrice, colVolume, colMarketCap, colChange}
	if len(header) < len(fixed)+2 {
		return nil, fmt.Errorf("header has %d columns, expected at least %d", len(header), len(fixed)+2)
	}
	for i, want := range fixed {
		if header[i] != want {
			return nil, fmt.Errorf("column %d is %q, expected %q", i, header[i], want)
		}
	}
	windows := make([]int, 0, len(header))
	for _, name := range header[len(fixed) : len(header)-2] {
		win, err := strconv.Atoi(strings.TrimPrefix(name, smaColPrefix))
		if !strings.HasPrefix(name, smaColPrefix) || err != nil {
			return nil, fmt.Errorf("unexpected column %q", name)
		}
		windows = append(windows, win)
	}

	out := make(entity.DerivedSeries, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d: %d fields, expected %d", i+1, len(rec), len(header))
		}
		tm, err := time.Parse(timeLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+1, rec[0], err)
		}
		dp := entity.DerivedPoint{SMA: make(map[int]*float64, len(windows))}
		dp.Time = tm
		if dp.Price, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("row %d: parse price %q: %w", i+1, rec[1], err)
		}
		if dp.Volume, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("row %d: parse volume %q: %w", i+1, rec[2], err)
		}
		if dp.MarketCap, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("row %d: parse market cap %q: %w", i+1, rec[3], err)
		}
		if dp.Change, err = parseOpt(rec[4]); err != nil {
			return nil, fmt.Errorf("row %d: parse change %q: %w", i+1, rec[4], err)
		}
		for j, win := range windows {
			if dp.SMA[win], err = parseOpt(rec[5+j]); err != nil {
				return nil, fmt.Errorf("row %d: parse %s %q: %w", i+1, smaCol(win), rec[5+j], err)
			}
		}
		if dp.VolumeSMA, err = parseOpt(rec[len(rec)-2]); err != nil {
			return nil, fmt.Errorf("row %d: parse volume sma %q: %w", i+1, rec[len(rec)-2], err)
		}
		if dp.Volatility, err = parseOpt(rec[len(rec)-1]); err != nil {
			return nil, fmt.Errorf("row %d: parse volatility %q: %w", i+1, rec[len(rec)-1], err)
		}
		out = append(out, dp)
	}
	return out, nil
}

// WriteJSON writes the derived series as an array of flat objects with the
// same column names as the CSV form.
func WriteJSON(w io.Writer, ds entity.DerivedSeries) error {
	windows := ds.Windows()
	recs := make([]map[string]any, 0, len(ds))
	for _, p := range ds {
		rec := map[string]any{
			colDate:       p.Time.Format(timeLayout),
			colPrice:      p.Price,
			colVolume:     p.Volume,
			colMarketCap:  p.MarketCap,
			colChange:     optValue(p.Change),
			colVolumeSMA:  optValue(p.VolumeSMA),
			colVolatility: optValue(p.Volatility),
		}
		for _, win := range windows {
			rec[smaCol(win)] = optValue(p.SMA[win])
		}
		recs = append(recs, rec)
	}
	return json.NewEncoder(w).Encode(recs)
}

// ReadJSON parses objects produced by WriteJSON back into a derived series.
func ReadJSON(r io.Reader) (entity.DerivedSeries, error) {
	var recs []map[string]any
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, err
	}

	out := make(entity.DerivedSeries, 0, len(recs))
	for i, rec := range recs {
		dp := entity.DerivedPoint{SMA: make(map[int]*float64)}

		dateStr, ok := rec[colDate].(string)
		if !ok {
			return nil, fmt.Errorf("record %d: missing date", i)
		}
		tm, err := time.Parse(timeLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("record %d: parse date %q: %w", i, dateStr, err)
		}
		dp.Time = tm

		if dp.Price, err = numField(rec, colPrice); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if dp.Volume, err = numField(rec, colVolume); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if dp.MarketCap, err = numField(rec, colMarketCap); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		dp.Change = optNum(rec[colChange])
		dp.VolumeSMA = optNum(rec[colVolumeSMA])
		dp.Volatility = optNum(rec[colVolatility])
		for name, v := range rec {
			if !strings.HasPrefix(name, smaColPrefix) {
				continue
			}
			win, err := strconv.Atoi(strings.TrimPrefix(name, smaColPrefix))
			if err != nil {
				return nil, fmt.Errorf("record %d: unexpected key %q", i, name)
			}
			dp.SMA[win] = optNum(v)
		}
		out = append(out, dp)
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func parseOpt(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optNum(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func numField(rec map[string]any, key string) (float64, error) {
	f, ok := rec[key].(float64)
	if !ok {
		return 0, fmt.Errorf("missing numeric field %q", key)
	}
	return f, nil
}
