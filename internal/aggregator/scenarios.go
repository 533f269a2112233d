package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"marketfeed/internal/models"
	"marketfeed/internal/store"
	"marketfeed/internal/upstream"
)

// Scenarios generates the trading-scenario bundle. Quote failures
// degrade to zero inputs; a generation failure falls back to the last
// cached bundle, then to the documented error-shaped payload.
func (s *Service) Scenarios(ctx context.Context) models.ScenarioBundle {
	start := time.Now()
	defer func() {
		s.deps.Metrics.RecordAggregate("scenarios", time.Since(start))
	}()

	quotes := timed(s.deps.Metrics, "pair_prices", func() upstream.Result[models.PairPrices] {
		return s.deps.PairPrices.FetchSimplePrices(ctx)
	})
	if !quotes.OK() {
		s.logger.Warn("scenario_quotes_degraded", "error", quotes.Err)
	}

	bundle, err := s.generateScenarios(ctx, quotes.Value)
	if err != nil {
		s.logger.Error("scenario_generation_failed", "error", err)
		return loadCached(ctx, s, store.KindScenarios, models.ErrorBundle(time.Now()))
	}

	s.save(ctx, store.KindScenarios, bundle)
	return bundle
}

func (s *Service) generateScenarios(ctx context.Context, quotes models.PairPrices) (models.ScenarioBundle, error) {
	var bundle models.ScenarioBundle

	if s.deps.LLM == nil || !s.deps.LLM.Configured() {
		return bundle, upstream.ErrNotConfigured
	}

	content, err := s.deps.LLM.Complete(ctx, scenarioPrompt(quotes, time.Now().UTC()), 0.7)
	if err != nil {
		return bundle, err
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		return bundle, err
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return bundle, fmt.Errorf("invalid scenario JSON: %w", err)
	}
	if err := s.validator.Validate(decoded); err != nil {
		return bundle, fmt.Errorf("scenario payload rejected: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return bundle, fmt.Errorf("decode scenario bundle: %w", err)
	}
	return bundle, nil
}

// extractJSONObject cuts the first top-level JSON object out of a model
// reply, tolerating prose or fencing around it.
func extractJSONObject(content string) (string, error) {
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first < 0 || last <= first {
		return "", fmt.Errorf("no JSON object in completion")
	}
	return content[first : last+1], nil
}

// scenarioPrompt embeds the live quotes into the generation contract.
// The JSON template pins the exact response shape so the reply can be
// validated and decoded without repair.
func scenarioPrompt(quotes models.PairPrices, now time.Time) string {
	return fmt.Sprintf(`You are a professional trading analyst. Given current market data, generate trading scenarios.

Current Data:
- BTC: %s (24h change: %.2f%%)
- Gold (PAXG): $%.2f (24h change: %.2f%%)

Generate exactly this JSON (no markdown, no extra text):
{
  "btc": {
    "currentPrice": %g,
    "change24h": %.2f,
    "scenarios": [
      {
        "id": "btc-1",
        "title": "<scenario title>",
        "bias": "LONG" or "SHORT" or "NEUTRAL",
        "probability": <number 1-100>,
        "condition": "<entry condition in Vietnamese>",
        "action": "<trading action in Vietnamese>",
        "invalidation": "<invalidation level in Vietnamese>",
        "keyLevels": ["$XX,XXX", "$XX,XXX"]
      }
    ]
  },
  "gold": {
    "currentPrice": %g,
    "change24h": %.2f,
    "scenarios": [
      {
        "id": "gold-1",
        "title": "<scenario title>",
        "bias": "LONG" or "SHORT" or "NEUTRAL",
        "probability": <number 1-100>,
        "condition": "<entry condition in Vietnamese>",
        "action": "<trading action in Vietnamese>",
        "invalidation": "<invalidation level in Vietnamese>",
        "keyLevels": ["$X,XXX", "$X,XXX"]
      }
    ]
  },
  "generatedAt": "%s"
}

Generate 2 scenarios for BTC and 2 for Gold. Write conditions/actions/invalidations in Vietnamese. Be specific with price levels.`,
		models.FormatPrice(quotes.BTCPrice), quotes.BTCChange,
		quotes.GoldPrice, quotes.GoldChange,
		quotes.BTCPrice, quotes.BTCChange,
		quotes.GoldPrice, quotes.GoldChange,
		now.Format(time.RFC3339))
}
