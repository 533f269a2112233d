package models

// Ticker is a single spot-market ticker slice of the snapshot.
// Values come straight from the upstream 24h statistics; high >= low is
// not enforced locally.
type Ticker struct {
	Symbol      string  `json:"symbol"` // base asset, e.g. "BTC"
	Price       float64 `json:"price"`
	PriceChange float64 `json:"priceChange"` // percent, signed
	Volume      float64 `json:"volume"`      // quote volume, USD
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
}

// Derivative is one derivatives listing, de-duplicated by base symbol.
type Derivative struct {
	Symbol       string  `json:"symbol"`
	FundingRate  float64 `json:"fundingRate"` // signed fraction
	OpenInterest float64 `json:"openInterest"`
	Volume24h    float64 `json:"volume24h"`
	Spread       float64 `json:"spread"` // bid/ask spread
}

// GlobalStats holds the market-wide aggregates slice of the snapshot.
type GlobalStats struct {
	BTCDominance   float64 `json:"btcDominance"` // percent, 0-100
	TotalMarketCap float64 `json:"totalMarketCap"`
	TotalVolume24h float64 `json:"totalVolume24h"`
}

// MarketSnapshot is the aggregate market-data response. It is always
// structurally complete: a failed upstream slice degrades to the last
// cached value or its empty default, never to a missing field.
type MarketSnapshot struct {
	Tickers        []Ticker     `json:"tickers"`
	BTCDominance   float64      `json:"btcDominance"`
	TotalMarketCap float64      `json:"totalMarketCap"`
	TotalVolume24h float64      `json:"totalVolume24h"`
	Derivatives    []Derivative `json:"derivatives"`
	UpdatedAt      string       `json:"updatedAt,omitempty"` // RFC 3339, UTC
}

// EmptySnapshot is the documented all-default payload returned when no
// live or cached data is available.
func EmptySnapshot() MarketSnapshot {
	return MarketSnapshot{
		Tickers:     []Ticker{},
		Derivatives: []Derivative{},
	}
}

// CoinPrice is one row of the lightweight price-ticker feed.
type CoinPrice struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// PairPrices carries the BTC and tokenized-gold quotes used as scenario
// generation inputs.
type PairPrices struct {
	BTCPrice   float64
	BTCChange  float64
	GoldPrice  float64
	GoldChange float64
}
