package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"btc_dashboard/internal/app/router"
	markethandler "btc_dashboard/internal/feature/market/transport/handler"
	"btc_dashboard/internal/feature/market/usecase"
	"btc_dashboard/internal/platform/cache"
	"btc_dashboard/internal/platform/externalapi/coingecko"
	"btc_dashboard/internal/platform/fallback"
	platformhttp "btc_dashboard/internal/platform/http"
	platformredis "btc_dashboard/internal/platform/redis"
	"btc_dashboard/internal/shared/ratelimiter"
)

const (
	// coinGeckoCallsPerMinute stays under the public API's free-tier budget.
	coinGeckoCallsPerMinute = 30

	chartCacheTTL = 5 * time.Minute
	statsCacheTTL = time.Hour
)

func main() {
	// .env is a development convenience; absence is fine
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Redis is an optional accelerator, never a dependency
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Live source
	cfg := coingecko.LoadConfig()
	limiter := ratelimiter.NewRateLimiter(coinGeckoCallsPerMinute, time.Minute)
	market := coingecko.NewCoinGeckoMarket(cfg, platformhttp.NewHTTPClient(cfg.Timeout), limiter)

	// Wrap with the Redis cache
	cachedMarket := cache.NewCachingMarketRepository(rdb, chartCacheTTL, statsCacheTTL, market, "market")

	// Bundled fallback dataset; a broken dataset is a deployment defect
	sample, err := fallback.NewSampleRepository(os.Getenv("SAMPLE_DATA_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	// Usecase
	marketUC := usecase.NewMarketUsecase(cachedMarket, sample)

	// Handler
	marketH := markethandler.NewMarketHandler(marketUC)

	// Router
	router := router.NewRouter(marketH)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := router.Run(addr); err != nil {
		log.Fatal(err)
	}
}
