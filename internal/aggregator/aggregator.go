// Package aggregator fans out to the upstream clients, merges their
// results into the feed payloads and degrades per slice through the
// fallback store. It never returns an error to its callers: every
// operation settles to a structurally valid payload.
package aggregator

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"marketfeed/internal/instrumentation"
	"marketfeed/internal/models"
	"marketfeed/internal/store"
	"marketfeed/internal/upstream"
)

// TickerSource fetches spot ticker statistics.
type TickerSource interface {
	FetchTickers(ctx context.Context) upstream.Result[[]models.Ticker]
}

// GlobalSource fetches market-wide aggregates.
type GlobalSource interface {
	FetchGlobal(ctx context.Context) upstream.Result[models.GlobalStats]
}

// DerivativesSource fetches the derivatives listing.
type DerivativesSource interface {
	FetchDerivatives(ctx context.Context) upstream.Result[[]models.Derivative]
}

// MarketsSource fetches the coin price-ticker rows.
type MarketsSource interface {
	FetchMarkets(ctx context.Context) upstream.Result[[]models.CoinPrice]
}

// PairPriceSource fetches the scenario input quotes.
type PairPriceSource interface {
	FetchSimplePrices(ctx context.Context) upstream.Result[models.PairPrices]
}

// EventSource fetches one calendar source.
type EventSource interface {
	FetchEvents(ctx context.Context) upstream.Result[[]models.CalendarEvent]
}

// TextGenerator is the LLM gateway surface used for scenario
// generation and batch translation.
type TextGenerator interface {
	Configured() bool
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	TranslateBatch(ctx context.Context, names []string, lang string) (map[string]string, error)
}

// Deps wires a Service.
type Deps struct {
	Tickers      TickerSource
	Global       GlobalSource
	Derivatives  DerivativesSource
	Markets      MarketsSource
	PairPrices   PairPriceSource
	CryptoEvents EventSource
	MacroEvents  EventSource
	LLM          TextGenerator // optional

	TranslateLang string // empty disables calendar translation

	Store   store.Store
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics // optional
}

// Service aggregates upstream data into the feed payloads.
type Service struct {
	deps      Deps
	logger    *slog.Logger
	validator *SchemaValidator
}

// New creates the aggregation service.
func New(deps Deps) (*Service, error) {
	validator, err := NewSchemaValidator(scenarioBundleSchema())
	if err != nil {
		return nil, err
	}
	return &Service{
		deps:      deps,
		logger:    deps.Logger.With("component", "aggregator"),
		validator: validator,
	}, nil
}

// MarketSnapshot fans out the three market slices concurrently and
// merges them. A failed slice falls back to its last cached value, then
// to its empty default; sibling slices are never affected.
func (s *Service) MarketSnapshot(ctx context.Context) models.MarketSnapshot {
	start := time.Now()
	defer func() {
		s.deps.Metrics.RecordAggregate("market", time.Since(start))
	}()

	var (
		tickers upstream.Result[[]models.Ticker]
		global  upstream.Result[models.GlobalStats]
		derivs  upstream.Result[[]models.Derivative]
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		tickers = timed(s.deps.Metrics, "spot_tickers", func() upstream.Result[[]models.Ticker] {
			return s.deps.Tickers.FetchTickers(ctx)
		})
	}()
	go func() {
		defer wg.Done()
		global = timed(s.deps.Metrics, "global_stats", func() upstream.Result[models.GlobalStats] {
			return s.deps.Global.FetchGlobal(ctx)
		})
	}()
	go func() {
		defer wg.Done()
		derivs = timed(s.deps.Metrics, "derivatives", func() upstream.Result[[]models.Derivative] {
			return s.deps.Derivatives.FetchDerivatives(ctx)
		})
	}()
	wg.Wait()

	snap := models.EmptySnapshot()

	if tickers.OK() {
		snap.Tickers = tickers.Value
		s.save(ctx, store.KindMarketTickers, tickers.Value)
	} else {
		s.logger.Warn("tickers_degraded", "error", tickers.Err)
		snap.Tickers = loadCached(ctx, s, store.KindMarketTickers, []models.Ticker{})
	}

	stats := global.Value
	if global.OK() {
		s.save(ctx, store.KindMarketGlobal, global.Value)
	} else {
		s.logger.Warn("global_stats_degraded", "error", global.Err)
		stats = loadCached(ctx, s, store.KindMarketGlobal, models.GlobalStats{})
	}
	snap.BTCDominance = math.Round(stats.BTCDominance*100) / 100
	snap.TotalMarketCap = stats.TotalMarketCap
	snap.TotalVolume24h = stats.TotalVolume24h

	if derivs.OK() {
		snap.Derivatives = derivs.Value
		s.save(ctx, store.KindMarketDerivatives, derivs.Value)
	} else {
		s.logger.Warn("derivatives_degraded", "error", derivs.Err)
		snap.Derivatives = loadCached(ctx, s, store.KindMarketDerivatives, []models.Derivative{})
	}

	snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return snap
}

// CoinPrices returns the lightweight price-ticker rows, cached or empty
// on failure.
func (s *Service) CoinPrices(ctx context.Context) []models.CoinPrice {
	start := time.Now()
	defer func() {
		s.deps.Metrics.RecordAggregate("prices", time.Since(start))
	}()

	res := timed(s.deps.Metrics, "coin_markets", func() upstream.Result[[]models.CoinPrice] {
		return s.deps.Markets.FetchMarkets(ctx)
	})
	if !res.OK() {
		s.logger.Warn("coin_prices_degraded", "error", res.Err)
		return loadCached(ctx, s, store.KindCoinPrices, []models.CoinPrice{})
	}

	s.save(ctx, store.KindCoinPrices, res.Value)
	return res.Value
}

// save refreshes one fallback slice. Store failures are logged, never
// surfaced: a broken fallback store must not break a live response.
func (s *Service) save(ctx context.Context, kind string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("fallback_marshal_failed", "kind", kind, "error", err)
		return
	}
	if err := s.deps.Store.Put(ctx, kind, payload); err != nil {
		s.logger.Error("fallback_store_failed", "kind", kind, "error", err)
	}
}

// loadCached reads one fallback slice, returning the empty default when
// nothing usable is stored.
func loadCached[T any](ctx context.Context, s *Service, kind string, fallback T) T {
	payload, err := s.deps.Store.Get(ctx, kind)
	if err != nil {
		s.logger.Error("fallback_read_failed", "kind", kind, "error", err)
		return fallback
	}
	if payload == nil {
		return fallback
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		s.logger.Error("fallback_unmarshal_failed", "kind", kind, "error", err)
		return fallback
	}
	s.deps.Metrics.RecordFallback(kind)
	return v
}

// timed wraps one upstream fetch with request/latency metrics.
func timed[T any](m *instrumentation.Metrics, adapter string, fn func() upstream.Result[T]) upstream.Result[T] {
	start := time.Now()
	r := fn()
	m.RecordUpstream(adapter, r.OK(), time.Since(start))
	return r
}
