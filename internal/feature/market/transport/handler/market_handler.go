// Package handler provides the HTTP handlers for the market feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"btc_dashboard/internal/feature/market/domain"
	"btc_dashboard/internal/feature/market/export"
	"btc_dashboard/internal/feature/market/transport/http/dto"
	"btc_dashboard/internal/feature/market/usecase"
)

const dateLayout = "2006-01-02"

// MarketUsecase defines the usecase interface for market data operations.
// Following Go convention: interfaces are defined by the consumer (handler).
type MarketUsecase interface {
	GetChart(ctx context.Context, windowDays int, windows []int, refresh bool) (usecase.ChartResult, error)
	GetSummary(ctx context.Context, windowDays int, start, end *time.Time, refresh bool) (usecase.SummaryResult, error)
	FetchCurrentStats(ctx context.Context, refresh bool) (usecase.StatsResult, error)
}

// MarketHandler handles the dashboard's HTTP requests.
type MarketHandler struct {
	uc MarketUsecase
}

// NewMarketHandler creates a new MarketHandler instance with the given usecase.
func NewMarketHandler(uc MarketUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// GetChartHandler returns the derived series for a trailing window.
//
// Example endpoint:
// GET /api/v1/market/chart?days=90&windows=7,30&refresh=false
func (h *MarketHandler) GetChartHandler(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "90"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be an integer"})
		return
	}
	windows, err := parseWindows(c.Query("windows"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.uc.GetChart(c.Request.Context(), days, windows, refreshRequested(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, chartResponse(res))
}

// GetStatsHandler returns the current live snapshot (or its fallback).
//
// Example endpoint:
// GET /api/v1/market/stats
func (h *MarketHandler) GetStatsHandler(c *gin.Context) {
	res, err := h.uc.FetchCurrentStats(c.Request.Context(), refreshRequested(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Fallback:          res.Fallback,
		Reason:            res.Reason,
		CurrentPrice:      res.Stats.CurrentPrice,
		Change24h:         res.Stats.Change24h,
		MarketCap:         res.Stats.MarketCap,
		TotalVolume:       res.Stats.TotalVolume,
		CirculatingSupply: res.Stats.CirculatingSupply,
		LastUpdated:       res.Stats.LastUpdated.UTC().Format(time.RFC3339),
	})
}

// GetSummaryHandler returns summary metrics for a window, optionally narrowed
// to a start/end date sub-range.
//
// Example endpoint:
// GET /api/v1/market/summary?days=90&start=2025-06-01&end=2025-06-30
func (h *MarketHandler) GetSummaryHandler(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "90"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be an integer"})
		return
	}
	start, end, err := parseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.uc.GetSummary(c.Request.Context(), days, start, end, refreshRequested(c))
	if err != nil {
		writeError(c, err)
		return
	}

	snap := res.Snapshot
	c.JSON(http.StatusOK, dto.SummaryResponse{
		Fallback:     res.Fallback,
		Reason:       res.Reason,
		CurrentPrice: snap.CurrentPrice,
		Change24h:    snap.Change24h,
		MarketCap:    snap.MarketCap,
		Volume:       snap.Volume,
		PeriodReturn: snap.PeriodReturn,
		MaxPrice:     snap.MaxPrice,
		MinPrice:     snap.MinPrice,
		AvgVolume:    snap.AvgVolume,
		Volatility:   snap.Volatility,
		SharpeRatio:  snap.SharpeRatio,
	})
}

// ExportHandler streams the derived series as a CSV or JSON download.
//
// Example endpoint:
// GET /api/v1/market/export?format=csv&days=90
func (h *MarketHandler) ExportHandler(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "90"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be an integer"})
		return
	}
	windows, err := parseWindows(c.Query("windows"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "json" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "format must be csv or json"})
		return
	}

	res, err := h.uc.GetChart(c.Request.Context(), days, windows, refreshRequested(c))
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("bitcoin_data_%dd.%s", days, format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		err = export.WriteCSV(c.Writer, res.Derived)
	} else {
		c.Header("Content-Type", "application/json")
		err = export.WriteJSON(c.Writer, res.Derived)
	}
	if err != nil {
		// Headers are already out; nothing left to do but abort the stream.
		c.Abort()
	}
}

// chartResponse converts a usecase result into its wire form.
func chartResponse(res usecase.ChartResult) dto.ChartResponse {
	out := dto.ChartResponse{
		Fallback: res.Fallback,
		Reason:   res.Reason,
		Points:   make([]dto.ChartPoint, 0, len(res.Derived)),
	}
	for _, p := range res.Derived {
		sma := make(map[string]*float64, len(p.SMA))
		for w, v := range p.SMA {
			sma[strconv.Itoa(w)] = v
		}
		out.Points = append(out.Points, dto.ChartPoint{
			Date:        p.Time.UTC().Format(dateLayout),
			Price:       p.Price,
			Volume:      p.Volume,
			MarketCap:   p.MarketCap,
			PriceChange: p.Change,
			SMA:         sma,
			VolumeSMA:   p.VolumeSMA,
			Volatility:  p.Volatility,
		})
	}
	return out
}

// writeError maps domain errors to HTTP statuses: caller mistakes are 400,
// empty aggregates 422, anything else 502. The fallback contract means
// upstream outages normally never reach this path.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}
}

// refreshRequested reports whether the caller asked to bypass the cache.
func refreshRequested(c *gin.Context) bool {
	return c.Query("refresh") == "true"
}

// parseWindows parses a comma-separated list of moving-average windows.
// An empty parameter means the usecase default.
func parseWindows(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	windows := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("windows must be a comma-separated list of integers")
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// parseDateRange parses the optional start/end parameters. Both must be
// given together.
func parseDateRange(startRaw, endRaw string) (*time.Time, *time.Time, error) {
	if startRaw == "" && endRaw == "" {
		return nil, nil, nil
	}
	if startRaw == "" || endRaw == "" {
		return nil, nil, fmt.Errorf("start and end must be provided together")
	}
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("start must be formatted as %s", dateLayout)
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("end must be formatted as %s", dateLayout)
	}
	return &start, &end, nil
}
