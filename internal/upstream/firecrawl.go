package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketfeed/internal/models"
)

const macroCalendarURL = "https://www.tradingview.com/economic-calendar/"

// macroEventSchema drives the extraction service: rather than parsing
// the calendar page locally, the service is asked for rows matching
// this shape.
var macroEventSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"events": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date":     map[string]any{"type": "string", "description": "event date, YYYY-MM-DD"},
					"time":     map[string]any{"type": "string", "description": "event time, HH:MM, empty if not shown"},
					"currency": map[string]any{"type": "string", "description": "three-letter currency code"},
					"name":     map[string]any{"type": "string", "description": "event name"},
					"impact":   map[string]any{"type": "string", "description": "high, medium or low"},
					"actual":   map[string]any{"type": "string"},
					"forecast": map[string]any{"type": "string"},
					"previous": map[string]any{"type": "string"},
				},
				"required": []string{"date", "name"},
			},
		},
	},
	"required": []string{"events"},
}

// FirecrawlClient extracts macro-economic calendar rows from the
// calendar webpage through a schema-guided extraction service.
type FirecrawlClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	logger  *slog.Logger
}

// NewFirecrawlClient creates the client. An empty apiKey produces a
// client whose fetches fail fast with ErrNotConfigured.
func NewFirecrawlClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *FirecrawlClient {
	return &FirecrawlClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		hc:      newHTTPClient(timeout),
		logger:  logger.With("adapter", "firecrawl"),
	}
}

type firecrawlRequest struct {
	URL             string           `json:"url"`
	Formats         []string         `json:"formats"`
	OnlyMainContent bool             `json:"onlyMainContent"`
	WaitFor         int              `json:"waitFor"`
	Extract         firecrawlExtract `json:"extract"`
}

type firecrawlExtract struct {
	Schema map[string]any `json:"schema"`
}

type macroEventRow struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Currency string `json:"currency"`
	Name     string `json:"name"`
	Impact   string `json:"impact"`
	Actual   string `json:"actual"`
	Forecast string `json:"forecast"`
	Previous string `json:"previous"`
}

type firecrawlResponse struct {
	Data struct {
		Extract struct {
			Events []macroEventRow `json:"events"`
		} `json:"extract"`
	} `json:"data"`
}

// FetchEvents scrapes the macro calendar page and maps the extracted
// rows. Rows missing a date or name are dropped; everything else
// defaults to null.
func (c *FirecrawlClient) FetchEvents(ctx context.Context) Result[[]models.CalendarEvent] {
	if c.apiKey == "" {
		c.logger.Warn("api_key_missing")
		return Fail[[]models.CalendarEvent](ErrNotConfigured)
	}

	reqBody := firecrawlRequest{
		URL:             macroCalendarURL,
		Formats:         []string{"extract"},
		OnlyMainContent: true,
		WaitFor:         5000,
		Extract:         firecrawlExtract{Schema: macroEventSchema},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp firecrawlResponse
	if err := postJSON(ctx, c.hc, c.baseURL+"/v1/scrape", headers, reqBody, &resp); err != nil {
		c.logger.Error("extract_failed", "error", err)
		return Fail[[]models.CalendarEvent](err)
	}

	events := make([]models.CalendarEvent, 0, len(resp.Data.Extract.Events))
	for _, row := range resp.Data.Extract.Events {
		if row.Date == "" || row.Name == "" {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:        fmt.Sprintf("tv-%s-%d", row.Date, len(events)),
			EventDate: row.Date,
			EventTime: nilIfEmpty(row.Time),
			Currency:  nilIfEmpty(row.Currency),
			EventName: truncate(row.Name, maxEventNameLen),
			Impact:    normalizeImpact(row.Impact),
			Actual:    nilIfEmpty(row.Actual),
			Forecast:  nilIfEmpty(row.Forecast),
			Previous:  nilIfEmpty(row.Previous),
			Source:    models.SourceTradingView,
		})
	}

	c.logger.Debug("events_extracted", "count", len(events))
	return Ok(events)
}

// normalizeImpact maps free-form impact text onto the enum, nil for
// anything unrecognized.
func normalizeImpact(s string) *string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.ImpactHigh:
		return strPtr(models.ImpactHigh)
	case models.ImpactMedium, "moderate":
		return strPtr(models.ImpactMedium)
	case models.ImpactLow:
		return strPtr(models.ImpactLow)
	default:
		return nil
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
