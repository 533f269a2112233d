package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketfeed/internal/models"
)

// ErrNotConfigured is returned by adapters whose API key is absent. The
// adapter short-circuits without a network call; siblings are unaffected.
var ErrNotConfigured = errors.New("adapter not configured")

const (
	cmcMaxEvents     = 75
	cmcLookbackDays  = 7
	cmcLookaheadDays = 14
	maxEventNameLen  = 200
)

// CoinMarketCalClient fetches crypto-event calendar entries.
type CoinMarketCalClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	logger  *slog.Logger
}

// NewCoinMarketCalClient creates the client. An empty apiKey produces a
// client whose fetches fail fast with ErrNotConfigured.
func NewCoinMarketCalClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *CoinMarketCalClient {
	return &CoinMarketCalClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		hc:      newHTTPClient(timeout),
		logger:  logger.With("adapter", "coinmarketcal"),
	}
}

type cmcCoin struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type cmcCategory struct {
	Name string `json:"name"`
}

type cmcEvent struct {
	DateEvent  string          `json:"date_event"`
	Title      json.RawMessage `json:"title"` // {"en": "..."} or plain string
	Coins      []cmcCoin       `json:"coins"`
	Categories []cmcCategory   `json:"categories"`
	Percentage *float64        `json:"percentage"`
}

// The events payload has shipped under different envelopes over time.
type cmcEnvelope struct {
	Body []cmcEvent `json:"body"`
	Data []cmcEvent `json:"data"`
}

// FetchEvents returns crypto calendar events for a window of one week
// back through two weeks ahead. Events without a date are dropped;
// every other missing field defaults.
func (c *CoinMarketCalClient) FetchEvents(ctx context.Context) Result[[]models.CalendarEvent] {
	if c.apiKey == "" {
		c.logger.Warn("api_key_missing")
		return Fail[[]models.CalendarEvent](ErrNotConfigured)
	}

	now := time.Now().UTC()
	url := fmt.Sprintf("%s/v1/events?max=%d&dateRangeStart=%s&dateRangeEnd=%s",
		c.baseURL, cmcMaxEvents,
		now.AddDate(0, 0, -cmcLookbackDays).Format("2006-01-02"),
		now.AddDate(0, 0, cmcLookaheadDays).Format("2006-01-02"))

	headers := map[string]string{"x-api-key": c.apiKey, "Accept": "application/json"}

	var raw json.RawMessage
	if err := getJSON(ctx, c.hc, url, headers, &raw); err != nil {
		c.logger.Error("events_fetch_failed", "error", err)
		return Fail[[]models.CalendarEvent](err)
	}

	items, err := decodeCMCItems(raw)
	if err != nil {
		c.logger.Error("events_decode_failed", "error", err)
		return Fail[[]models.CalendarEvent](err)
	}

	events := make([]models.CalendarEvent, 0, len(items))
	for idx, item := range items {
		date := truncate(item.DateEvent, 10)
		if date == "" {
			continue
		}

		name := cmcTitle(item.Title)
		if name == "" {
			continue
		}
		name = truncate(name, maxEventNameLen)
		if cats := joinNames(item.Categories); cats != "" {
			name += " [" + cats + "]"
		}

		var impact *string
		if item.Percentage != nil {
			impact = strPtr(models.ImpactFromScore(*item.Percentage))
		}

		var currency *string
		if coins := joinCoins(item.Coins); coins != "" {
			currency = &coins
		}

		events = append(events, models.CalendarEvent{
			ID:        fmt.Sprintf("cmc-%s-%d", date, idx),
			EventDate: date,
			Currency:  currency,
			EventName: name,
			Impact:    impact,
			Source:    models.SourceCoinMarketCal,
		})
	}

	c.logger.Debug("events_fetched", "count", len(events))
	return Ok(events)
}

func decodeCMCItems(raw json.RawMessage) ([]cmcEvent, error) {
	var envelope cmcEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Body != nil {
			return envelope.Body, nil
		}
		if envelope.Data != nil {
			return envelope.Data, nil
		}
	}

	var items []cmcEvent
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	return items, nil
}

// cmcTitle extracts the English title from either envelope shape.
func cmcTitle(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		En string `json:"en"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.En != "" {
		return obj.En
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return "Crypto Event"
}

func joinCoins(coins []cmcCoin) string {
	parts := make([]string, 0, len(coins))
	for _, c := range coins {
		if c.Symbol != "" {
			parts = append(parts, c.Symbol)
		} else if c.Name != "" {
			parts = append(parts, c.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func joinNames(categories []cmcCategory) string {
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		if c.Name != "" {
			parts = append(parts, c.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func strPtr(s string) *string {
	return &s
}
