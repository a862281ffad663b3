package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"btc_dashboard/internal/feature/market/domain/entity"
	"btc_dashboard/internal/feature/market/usecase"
	"btc_dashboard/internal/platform/externalapi/coingecko/dto"
	"btc_dashboard/internal/shared/ratelimiter"
)

// vsCurrency is the quote currency for all requests.
const vsCurrency = "usd"

// CoinGeckoMarket is a MarketRepository implementation backed by the
// CoinGecko REST API.
type CoinGeckoMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// Compile-time check that CoinGeckoMarket implements MarketRepository.
var _ usecase.MarketRepository = (*CoinGeckoMarket)(nil)

// NewCoinGeckoMarket creates a new CoinGeckoMarket with the given
// configuration, HTTP client and rate limiter. The limiter gates every
// outbound call; pass nil to disable limiting.
func NewCoinGeckoMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *CoinGeckoMarket {
	return &CoinGeckoMarket{cfg: cfg, client: client, limiter: limiter}
}

// GetMarketChart fetches the historical price/volume/market-cap series for
// the trailing days and aligns the three parallel arrays by timestamp. Rows
// missing any of the three fields are dropped, not interpolated. The
// bypassCache flag only concerns caching decorators and is ignored here.
func (g *CoinGeckoMarket) GetMarketChart(ctx context.Context, days int, _ bool) (entity.Series, error) {
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("days", strconv.Itoa(days))
	// The upstream API serves daily granularity for long windows only.
	if days > 90 {
		q.Set("interval", "daily")
	} else {
		q.Set("interval", "hourly")
	}

	u := fmt.Sprintf("%s/coins/%s/market_chart?%s", g.cfg.BaseURL, g.cfg.CoinID, q.Encode())

	var body dto.MarketChartResponse
	if err := g.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}

	points := alignChart(body)
	series, err := entity.NewSeries(points)
	if err != nil {
		return nil, fmt.Errorf("market chart payload: %w", err)
	}
	return series, nil
}

// GetCoinStats fetches the current live snapshot for the asset.
func (g *CoinGeckoMarket) GetCoinStats(ctx context.Context, _ bool) (entity.CoinStats, error) {
	u := fmt.Sprintf("%s/coins/%s", g.cfg.BaseURL, g.cfg.CoinID)

	var body dto.CoinResponse
	if err := g.getJSON(ctx, u, &body); err != nil {
		return entity.CoinStats{}, err
	}

	price, ok := body.MarketData.CurrentPrice[vsCurrency]
	if !ok || price <= 0 {
		return entity.CoinStats{}, fmt.Errorf("coin stats payload: no %s price", vsCurrency)
	}

	stats := entity.CoinStats{
		CurrentPrice:      price,
		Change24h:         body.MarketData.Change24h,
		MarketCap:         body.MarketData.MarketCap[vsCurrency],
		TotalVolume:       body.MarketData.TotalVolume[vsCurrency],
		CirculatingSupply: body.MarketData.CirculatingSupply,
	}
	if body.LastUpdated != "" {
		tm, err := time.Parse(time.RFC3339, body.LastUpdated)
		if err != nil {
			return entity.CoinStats{}, fmt.Errorf("parse last_updated %q: %w", body.LastUpdated, err)
		}
		stats.LastUpdated = tm
	}
	return stats, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response into out.
func (g *CoinGeckoMarket) getJSON(ctx context.Context, u string, out any) error {
	if g.limiter != nil {
		g.limiter.WaitIfNeeded()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if g.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", g.cfg.APIKey)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("coingecko http %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode coingecko response: %w", err)
	}
	return nil
}

// alignChart joins the three parallel arrays on their millisecond timestamps,
// keeping only timestamps present in all three, in ascending order.
func alignChart(body dto.MarketChartResponse) []entity.PricePoint {
	volumes := make(map[int64]float64, len(body.TotalVolumes))
	for _, pair := range body.TotalVolumes {
		volumes[int64(pair[0])] = pair[1]
	}
	caps := make(map[int64]float64, len(body.MarketCaps))
	for _, pair := range body.MarketCaps {
		caps[int64(pair[0])] = pair[1]
	}

	points := make([]entity.PricePoint, 0, len(body.Prices))
	for _, pair := range body.Prices {
		ts := int64(pair[0])
		vol, okV := volumes[ts]
		mcap, okC := caps[ts]
		if !okV || !okC {
			continue
		}
		points = append(points, entity.PricePoint{
			Time:      time.UnixMilli(ts).UTC(),
			Price:     pair[1],
			Volume:    vol,
			MarketCap: mcap,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}
