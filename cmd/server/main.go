package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketfeed/internal/aggregator"
	"marketfeed/internal/config"
	"marketfeed/internal/handlers"
	"marketfeed/internal/instrumentation"
	"marketfeed/internal/store"
	"marketfeed/internal/upstream"
)

func main() {
	// Local .env, if present; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("marketfeed_starting",
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
		"upstream_timeout_ms", cfg.UpstreamTimeoutMS,
	)

	fallback, err := newStore(cfg, logger)
	if err != nil {
		logger.Error("failed to create fallback store", "error", err)
		os.Exit(1)
	}
	if closer, ok := fallback.(io.Closer); ok {
		defer closer.Close()
	}

	metrics := instrumentation.NewMetrics(prometheus.DefaultRegisterer)

	gecko := upstream.NewCoinGeckoClient(cfg.CoinGeckoBaseURL, cfg.UpstreamTimeout, logger)

	svc, err := aggregator.New(aggregator.Deps{
		Tickers:       upstream.NewBinanceClient(cfg.BinanceBaseURL, cfg.UpstreamTimeout, logger),
		Global:        gecko,
		Derivatives:   gecko,
		Markets:       gecko,
		PairPrices:    gecko,
		CryptoEvents:  upstream.NewCoinMarketCalClient(cfg.CoinMarketCalBaseURL, cfg.CoinMarketCalAPIKey, cfg.UpstreamTimeout, logger),
		MacroEvents:   upstream.NewFirecrawlClient(cfg.FirecrawlBaseURL, cfg.FirecrawlAPIKey, cfg.UpstreamTimeout, logger),
		LLM:           upstream.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.UpstreamTimeout, logger),
		TranslateLang: cfg.TranslateTargetLang,
		Store:         fallback,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		logger.Error("failed to create aggregator", "error", err)
		os.Exit(1)
	}

	feeds := handlers.NewFeeds(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(logger))
	r.Use(handlers.CORS)

	r.Get("/health", handlers.Health())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/market-data", feeds.MarketData)
	r.Get("/crypto-prices", feeds.CryptoPrices)
	r.Get("/fetch-economic-calendar", feeds.EconomicCalendar)
	r.Get("/generate-all-scenarios", feeds.Scenarios)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
		// Scenario generation waits on an LLM round trip; give writes
		// headroom beyond the upstream timeout.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.UpstreamTimeout + 10*time.Second,
	}

	go func() {
		logger.Info("marketfeed_listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutdown_signal_received", "signal", sig.String())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	logger.Info("marketfeed_stopped")
}

func newStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		return store.NewRedis(cfg.RedisURL, cfg.RedisPassword, logger)
	case config.StorePostgres:
		return store.NewPostgres(cfg.PostgresDSN, logger)
	default:
		return store.NewMemory(), nil
	}
}
