package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketfeed/internal/models"
)

// TrackedPairs are the spot pairs surfaced in the snapshot, in display
// order of the upstream listing.
var TrackedPairs = []string{
	"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT",
	"DOGEUSDT", "ADAUSDT", "AVAXUSDT", "DOTUSDT", "LINKUSDT",
}

// BinanceClient fetches 24h spot ticker statistics.
type BinanceClient struct {
	baseURL string
	hc      *http.Client
	logger  *slog.Logger
}

type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
}

// NewBinanceClient creates the spot-ticker client.
func NewBinanceClient(baseURL string, timeout time.Duration, logger *slog.Logger) *BinanceClient {
	return &BinanceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      newHTTPClient(timeout),
		logger:  logger.With("adapter", "binance"),
	}
}

// FetchTickers returns the tracked pairs' 24h statistics with the quote
// suffix stripped from symbols. Unparseable numeric fields default to 0.
func (c *BinanceClient) FetchTickers(ctx context.Context) Result[[]models.Ticker] {
	var raw []binanceTicker
	if err := getJSON(ctx, c.hc, c.baseURL+"/api/v3/ticker/24hr", nil, &raw); err != nil {
		c.logger.Error("ticker_fetch_failed", "error", err)
		return Fail[[]models.Ticker](err)
	}

	tracked := make(map[string]bool, len(TrackedPairs))
	for _, p := range TrackedPairs {
		tracked[p] = true
	}

	tickers := make([]models.Ticker, 0, len(TrackedPairs))
	for _, t := range raw {
		if !tracked[t.Symbol] {
			continue
		}
		tickers = append(tickers, models.Ticker{
			Symbol:      strings.TrimSuffix(t.Symbol, "USDT"),
			Price:       parseDecimal(t.LastPrice),
			PriceChange: parseDecimal(t.PriceChangePercent),
			Volume:      parseDecimal(t.QuoteVolume),
			High:        parseDecimal(t.HighPrice),
			Low:         parseDecimal(t.LowPrice),
		})
	}

	c.logger.Debug("tickers_fetched", "count", len(tickers))
	return Ok(tickers)
}

// parseDecimal parses an upstream string-encoded decimal, defaulting to
// 0 on empty or malformed input.
func parseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
