// Package router wires the HTTP routes of the dashboard API.
package router

import (
	markethandler "btc_dashboard/internal/feature/market/transport/handler"
	platformhandler "btc_dashboard/internal/platform/http/handler"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with all dashboard routes. Every endpoint
// is read-only; there is nothing to authenticate.
func NewRouter(market *markethandler.MarketHandler) *gin.Engine {
	r := gin.Default()

	// Liveness probe
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	r.OPTIONS("/healthz", platformhandler.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/market/chart", market.GetChartHandler)
		api.GET("/market/stats", market.GetStatsHandler)
		api.GET("/market/summary", market.GetSummaryHandler)
		api.GET("/market/export", market.ExportHandler)
	}

	return r
}
