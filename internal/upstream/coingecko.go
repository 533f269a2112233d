package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketfeed/internal/models"
)

// trackedBases are the base symbols kept from the derivatives listing.
var trackedBases = []string{"BTC", "ETH", "BNB", "SOL", "XRP", "DOGE", "ADA", "AVAX", "DOT", "LINK"}

// trackedCoinIDs are the coin ids of the price-ticker feed, requested
// in market-cap order.
var trackedCoinIDs = []string{
	"bitcoin", "ethereum", "tether", "ripple", "binancecoin",
	"usd-coin", "solana", "tron", "dogecoin", "bitcoin-cash",
}

// CoinGeckoClient fetches global market stats, derivatives listings,
// coin market rows and spot quote pairs.
type CoinGeckoClient struct {
	baseURL string
	hc      *http.Client
	logger  *slog.Logger
}

// NewCoinGeckoClient creates the client.
func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *slog.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      newHTTPClient(timeout),
		logger:  logger.With("adapter", "coingecko"),
	}
}

type globalResponse struct {
	Data struct {
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		TotalMarketCap      map[string]float64 `json:"total_market_cap"`
		TotalVolume         map[string]float64 `json:"total_volume"`
	} `json:"data"`
}

// FetchGlobal returns market-wide aggregates; absent fields default to 0.
func (c *CoinGeckoClient) FetchGlobal(ctx context.Context) Result[models.GlobalStats] {
	var raw globalResponse
	if err := getJSON(ctx, c.hc, c.baseURL+"/api/v3/global", nil, &raw); err != nil {
		c.logger.Error("global_fetch_failed", "error", err)
		return Fail[models.GlobalStats](err)
	}

	return Ok(models.GlobalStats{
		BTCDominance:   raw.Data.MarketCapPercentage["btc"],
		TotalMarketCap: raw.Data.TotalMarketCap["usd"],
		TotalVolume24h: raw.Data.TotalVolume["usd"],
	})
}

type derivativeEntry struct {
	Symbol       string   `json:"symbol"`
	FundingRate  *float64 `json:"funding_rate"`
	OpenInterest *float64 `json:"open_interest"`
	Volume24h    *float64 `json:"volume_24h"`
	BidAskSpread *float64 `json:"bid_ask_spread"`
}

// FetchDerivatives returns the tracked derivatives, keeping only the
// first listing per base symbol in upstream order.
func (c *CoinGeckoClient) FetchDerivatives(ctx context.Context) Result[[]models.Derivative] {
	var raw []derivativeEntry
	if err := getJSON(ctx, c.hc, c.baseURL+"/api/v3/derivatives", nil, &raw); err != nil {
		c.logger.Error("derivatives_fetch_failed", "error", err)
		return Fail[[]models.Derivative](err)
	}

	tracked := make(map[string]bool, len(trackedBases))
	for _, b := range trackedBases {
		tracked[b] = true
	}

	seen := make(map[string]bool)
	derivatives := make([]models.Derivative, 0, len(trackedBases))
	for _, d := range raw {
		base := strings.ToUpper(strings.SplitN(d.Symbol, "/", 2)[0])
		if !tracked[base] || seen[base] {
			continue
		}
		seen[base] = true
		derivatives = append(derivatives, models.Derivative{
			Symbol:       base,
			FundingRate:  floatOrZero(d.FundingRate),
			OpenInterest: floatOrZero(d.OpenInterest),
			Volume24h:    floatOrZero(d.Volume24h),
			Spread:       floatOrZero(d.BidAskSpread),
		})
	}

	c.logger.Debug("derivatives_fetched", "count", len(derivatives))
	return Ok(derivatives)
}

type marketRow struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// FetchMarkets returns the tracked coins' market rows.
func (c *CoinGeckoClient) FetchMarkets(ctx context.Context) Result[[]models.CoinPrice] {
	url := c.baseURL + "/api/v3/coins/markets?vs_currency=usd&ids=" +
		strings.Join(trackedCoinIDs, ",") + "&order=market_cap_desc&sparkline=false"

	var raw []marketRow
	if err := getJSON(ctx, c.hc, url, nil, &raw); err != nil {
		c.logger.Error("markets_fetch_failed", "error", err)
		return Fail[[]models.CoinPrice](err)
	}

	prices := make([]models.CoinPrice, 0, len(raw))
	for _, row := range raw {
		prices = append(prices, models.CoinPrice{
			ID:                       row.ID,
			Symbol:                   row.Symbol,
			Image:                    row.Image,
			CurrentPrice:             row.CurrentPrice,
			PriceChangePercentage24h: floatOrZero(row.PriceChangePercentage24h),
		})
	}
	return Ok(prices)
}

type simplePriceEntry struct {
	USD       float64 `json:"usd"`
	USDChange float64 `json:"usd_24h_change"`
}

// FetchSimplePrices returns the BTC and tokenized-gold quotes used for
// scenario generation. Missing entries default to 0.
func (c *CoinGeckoClient) FetchSimplePrices(ctx context.Context) Result[models.PairPrices] {
	url := c.baseURL + "/api/v3/simple/price?ids=bitcoin,pax-gold&vs_currencies=usd&include_24hr_change=true"

	var raw map[string]simplePriceEntry
	if err := getJSON(ctx, c.hc, url, nil, &raw); err != nil {
		c.logger.Error("simple_price_fetch_failed", "error", err)
		return Fail[models.PairPrices](err)
	}

	return Ok(models.PairPrices{
		BTCPrice:   raw["bitcoin"].USD,
		BTCChange:  raw["bitcoin"].USDChange,
		GoldPrice:  raw["pax-gold"].USD,
		GoldChange: raw["pax-gold"].USDChange,
	})
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
