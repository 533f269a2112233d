package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"marketfeed/internal/models"
)

// Aggregator is the feed surface the handlers serve. Every operation
// settles to a valid payload; none returns an error.
type Aggregator interface {
	MarketSnapshot(ctx context.Context) models.MarketSnapshot
	CoinPrices(ctx context.Context) []models.CoinPrice
	Calendar(ctx context.Context) []models.CalendarEvent
	Scenarios(ctx context.Context) models.ScenarioBundle
}

// Feeds holds the feed endpoint handlers. These are read-only dashboard
// feeds: the contract is always HTTP 200 with the documented JSON
// shape, degraded data beats an error screen.
type Feeds struct {
	agg    Aggregator
	logger *slog.Logger
}

// NewFeeds creates the feed handlers.
func NewFeeds(agg Aggregator, logger *slog.Logger) *Feeds {
	return &Feeds{
		agg:    agg,
		logger: logger.With("component", "feeds"),
	}
}

// MarketData serves GET /market-data.
func (f *Feeds) MarketData(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, r, f.agg.MarketSnapshot(r.Context()))
}

// CryptoPrices serves GET /crypto-prices.
func (f *Feeds) CryptoPrices(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, r, f.agg.CoinPrices(r.Context()))
}

// EconomicCalendar serves GET /fetch-economic-calendar.
func (f *Feeds) EconomicCalendar(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, r, f.agg.Calendar(r.Context()))
}

// Scenarios serves GET /generate-all-scenarios.
func (f *Feeds) Scenarios(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, r, f.agg.Scenarios(r.Context()))
}

func (f *Feeds) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		f.logger.Error("json_encode_failed", "path", r.URL.Path, "error", err)
	}
}
