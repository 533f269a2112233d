package aggregator

import (
	"context"
	"strings"
	"testing"
	"time"

	"marketfeed/internal/models"
	"marketfeed/internal/store"
	"marketfeed/internal/upstream"
)

const validScenarioJSON = `{
  "btc": {
    "currentPrice": 63100,
    "change24h": 2.41,
    "scenarios": [
      {"id":"btc-1","title":"Breakout","bias":"LONG","probability":60,
       "condition":"Gia vuot 64k","action":"Mua","invalidation":"Dong duoi 62k",
       "keyLevels":["$62,000","$64,000"]},
      {"id":"btc-2","title":"Rejection","bias":"SHORT","probability":40,
       "condition":"Tu choi tai 64k","action":"Ban","invalidation":"Dong tren 64.5k",
       "keyLevels":["$64,000"]}
    ]
  },
  "gold": {
    "currentPrice": 2410.55,
    "change24h": -0.3,
    "scenarios": [
      {"id":"gold-1","title":"Range","bias":"NEUTRAL","probability":55,
       "condition":"Di ngang","action":"Cho","invalidation":"Thung 2380",
       "keyLevels":["$2,380","$2,440"]}
    ]
  },
  "generatedAt": "2024-03-15T12:00:00Z"
}`

func scenarioDeps(llm TextGenerator) Deps {
	return Deps{
		PairPrices: stubPairPrices{upstream.Ok(models.PairPrices{BTCPrice: 63100, BTCChange: 2.41, GoldPrice: 2410.55, GoldChange: -0.3})},
		LLM:        llm,
	}
}

func TestScenariosHappyPath(t *testing.T) {
	// Prose and fencing around the object must not break extraction.
	completion := "Here you go:\n```json\n" + validScenarioJSON + "\n```"
	svc := newTestService(t, scenarioDeps(stubLLM{configured: true, completion: completion}))

	got := svc.Scenarios(context.Background())
	if got.Error != "" {
		t.Fatalf("unexpected error payload: %+v", got)
	}
	if got.BTC.CurrentPrice != 63100 || len(got.BTC.Scenarios) != 2 {
		t.Errorf("btc bundle: %+v", got.BTC)
	}
	if got.BTC.Scenarios[0].Bias != models.BiasLong || got.BTC.Scenarios[0].Probability != 60 {
		t.Errorf("scenario mapping: %+v", got.BTC.Scenarios[0])
	}
	if len(got.Gold.Scenarios) != 1 || got.Gold.Scenarios[0].Bias != models.BiasNeutral {
		t.Errorf("gold bundle: %+v", got.Gold)
	}
	if got.GeneratedAt == "" {
		t.Error("generatedAt missing")
	}
}

func TestScenariosRejectsInvalidShape(t *testing.T) {
	bad := `{"btc":{"currentPrice":"not-a-number","change24h":0,"scenarios":[]},"gold":{"currentPrice":0,"change24h":0,"scenarios":[]},"generatedAt":"x"}`
	svc := newTestService(t, scenarioDeps(stubLLM{configured: true, completion: bad}))

	got := svc.Scenarios(context.Background())
	if got.Error == "" {
		t.Errorf("schema-invalid payload accepted: %+v", got)
	}
	if got.BTC.Scenarios == nil || got.Gold.Scenarios == nil {
		t.Errorf("error bundle must stay structurally complete: %+v", got)
	}
}

func TestScenariosRejectsBadBias(t *testing.T) {
	bad := strings.Replace(validScenarioJSON, `"bias":"LONG"`, `"bias":"MOON"`, 1)
	svc := newTestService(t, scenarioDeps(stubLLM{configured: true, completion: bad}))

	if got := svc.Scenarios(context.Background()); got.Error == "" {
		t.Errorf("out-of-enum bias accepted: %+v", got)
	}
}

func TestScenariosLLMFailureColdCache(t *testing.T) {
	svc := newTestService(t, scenarioDeps(stubLLM{configured: true, completeErr: errUpstream}))

	before := time.Now().UTC()
	got := svc.Scenarios(context.Background())
	if got.Error == "" {
		t.Error("error field missing on degraded bundle")
	}
	if got.BTC.CurrentPrice != 0 || len(got.BTC.Scenarios) != 0 {
		t.Errorf("degraded bundle not zeroed: %+v", got.BTC)
	}
	gen, err := time.Parse(time.RFC3339, got.GeneratedAt)
	if err != nil {
		t.Fatalf("generatedAt %q: %v", got.GeneratedAt, err)
	}
	if gen.Before(before.Add(-time.Minute)) {
		t.Errorf("generatedAt too old: %v", gen)
	}
}

func TestScenariosLLMFailureServesCachedBundle(t *testing.T) {
	st := store.NewMemory()

	healthyDeps := scenarioDeps(stubLLM{configured: true, completion: validScenarioJSON})
	healthyDeps.Store = st
	newTestService(t, healthyDeps).Scenarios(context.Background())

	degradedDeps := scenarioDeps(stubLLM{configured: true, completeErr: errUpstream})
	degradedDeps.Store = st
	got := newTestService(t, degradedDeps).Scenarios(context.Background())
	if got.Error != "" || got.BTC.CurrentPrice != 63100 {
		t.Errorf("cached bundle not served: %+v", got)
	}
}

func TestScenariosUnconfiguredLLM(t *testing.T) {
	svc := newTestService(t, scenarioDeps(stubLLM{configured: false}))

	got := svc.Scenarios(context.Background())
	if got.Error == "" {
		t.Errorf("missing key should degrade: %+v", got)
	}
}

func TestScenariosQuoteFailureStillGenerates(t *testing.T) {
	svc := newTestService(t, Deps{
		PairPrices: stubPairPrices{upstream.Fail[models.PairPrices](errUpstream)},
		LLM:        stubLLM{configured: true, completion: validScenarioJSON},
	})

	got := svc.Scenarios(context.Background())
	if got.Error != "" {
		t.Errorf("quote failure alone must not fail generation: %+v", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	if _, err := extractJSONObject("no json here"); err == nil {
		t.Error("expected error without an object")
	}
	got, err := extractJSONObject(`prefix {"a": {"b": 1}} suffix`)
	if err != nil {
		t.Fatalf("extractJSONObject: %v", err)
	}
	if got != `{"a": {"b": 1}}` {
		t.Errorf("got %q", got)
	}
}
