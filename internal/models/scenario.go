package models

import "time"

// Scenario bias values.
const (
	BiasLong    = "LONG"
	BiasShort   = "SHORT"
	BiasNeutral = "NEUTRAL"
)

// Scenario is one generated trading scenario. Scenarios are produced
// per request and never persisted beyond the fallback store.
type Scenario struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Bias         string   `json:"bias"` // LONG | SHORT | NEUTRAL
	Probability  int      `json:"probability"`
	Condition    string   `json:"condition"`
	Action       string   `json:"action"`
	Invalidation string   `json:"invalidation"`
	KeyLevels    []string `json:"keyLevels"` // ordered price-label strings
}

// AssetScenarios bundles the scenarios for one asset with the quote
// they were generated from.
type AssetScenarios struct {
	CurrentPrice float64    `json:"currentPrice"`
	Change24h    float64    `json:"change24h"`
	Scenarios    []Scenario `json:"scenarios"`
}

// ScenarioBundle is the full generate-all-scenarios response.
type ScenarioBundle struct {
	Error       string         `json:"error,omitempty"`
	BTC         AssetScenarios `json:"btc"`
	Gold        AssetScenarios `json:"gold"`
	GeneratedAt string         `json:"generatedAt"`
}

// ErrorBundle is the degraded-but-valid scenario payload.
func ErrorBundle(now time.Time) ScenarioBundle {
	empty := AssetScenarios{Scenarios: []Scenario{}}
	return ScenarioBundle{
		Error:       "Failed to generate scenarios",
		BTC:         empty,
		Gold:        empty,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
}
