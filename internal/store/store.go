// Package store holds the fallback store: the last successful payload
// per data kind, read when a live aggregation degrades. Entries carry
// no TTL; staleness is bounded only by client poll cadence.
package store

import "context"

// Data kinds.
const (
	KindMarketTickers     = "market:tickers"
	KindMarketGlobal      = "market:global"
	KindMarketDerivatives = "market:derivatives"
	KindCoinPrices        = "prices"
	KindCalendar          = "calendar"
	KindScenarios         = "scenarios"
)

// Store is the process-wide fallback cache, keyed by data kind and
// updated only on successful fetches. Get returns (nil, nil) when the
// kind has never been stored.
type Store interface {
	Get(ctx context.Context, kind string) ([]byte, error)
	Put(ctx context.Context, kind string, payload []byte) error
}
