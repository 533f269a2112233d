package models

// Calendar event sources.
const (
	SourceTradingView   = "tradingview"
	SourceCoinMarketCal = "coinmarketcal"
)

// Impact levels.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// CalendarEvent is one merged economic-calendar entry. Events are
// rebuilt on every fetch; nothing persists across requests beyond the
// fallback store.
type CalendarEvent struct {
	ID        string  `json:"id"`
	EventDate string  `json:"event_date"` // ISO date, required
	EventTime *string `json:"event_time"` // "HH:MM", nil when unknown
	Currency  *string `json:"currency"`   // currency code or coin symbols
	EventName string  `json:"event_name"` // required, possibly translated
	Impact    *string `json:"impact"`     // high|medium|low, nil when unknown
	Actual    *string `json:"actual"`
	Forecast  *string `json:"forecast"`
	Previous  *string `json:"previous"`
	Source    string  `json:"source"`
}

// SortKey orders events by date then time; a missing time sorts first
// within its day.
func (e CalendarEvent) SortKey() string {
	t := "00:00"
	if e.EventTime != nil && *e.EventTime != "" {
		t = *e.EventTime
	}
	return e.EventDate + " " + t
}
