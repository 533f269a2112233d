package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketfeed/internal/models"
)

func TestFirecrawlMissingKeyShortCircuits(t *testing.T) {
	c := NewFirecrawlClient("http://127.0.0.1:0", "", time.Second, testLogger())
	res := c.FetchEvents(context.Background())
	if res.OK() || !errors.Is(res.Err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", res.Err)
	}
}

func TestFirecrawlExtractMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fc-key" {
			t.Errorf("auth = %q", got)
		}

		var req firecrawlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Formats) != 1 || req.Formats[0] != "extract" {
			t.Errorf("formats = %v", req.Formats)
		}
		if req.Extract.Schema == nil {
			t.Error("extraction schema missing from request")
		}

		w.Write([]byte(`{"data":{"extract":{"events":[
			{"date":"2024-03-15","time":"13:30","currency":"USD","name":"CPI YoY","impact":"High","actual":"3.2%","forecast":"3.1%","previous":"3.4%"},
			{"date":"2024-03-15","currency":"EUR","name":"ECB Speech","impact":"unknown"},
			{"date":"","name":"Dateless"},
			{"date":"2024-03-16","name":""}
		]}}}`))
	}))
	defer srv.Close()

	c := NewFirecrawlClient(srv.URL, "fc-key", time.Second, testLogger())
	res := c.FetchEvents(context.Background())
	if !res.OK() {
		t.Fatalf("FetchEvents: %v", res.Err)
	}
	if len(res.Value) != 2 {
		t.Fatalf("got %d events, want 2 (rows without date or name dropped)", len(res.Value))
	}

	cpi := res.Value[0]
	if cpi.ID != "tv-2024-03-15-0" || cpi.Source != models.SourceTradingView {
		t.Errorf("bad identity: %+v", cpi)
	}
	if cpi.EventTime == nil || *cpi.EventTime != "13:30" {
		t.Errorf("time = %v", cpi.EventTime)
	}
	if cpi.Impact == nil || *cpi.Impact != models.ImpactHigh {
		t.Errorf("impact = %v, want normalized high", cpi.Impact)
	}
	if cpi.Actual == nil || *cpi.Actual != "3.2%" {
		t.Errorf("actual = %v", cpi.Actual)
	}

	speech := res.Value[1]
	if speech.EventTime != nil {
		t.Errorf("missing time should be nil: %v", *speech.EventTime)
	}
	if speech.Impact != nil {
		t.Errorf("unrecognized impact should be nil: %v", *speech.Impact)
	}
}

func TestNormalizeImpact(t *testing.T) {
	cases := []struct {
		in   string
		want *string
	}{
		{"High", strPtr(models.ImpactHigh)},
		{" medium ", strPtr(models.ImpactMedium)},
		{"Moderate", strPtr(models.ImpactMedium)},
		{"LOW", strPtr(models.ImpactLow)},
		{"3 bulls", nil},
		{"", nil},
	}
	for _, c := range cases {
		got := normalizeImpact(c.in)
		switch {
		case c.want == nil && got != nil:
			t.Errorf("normalizeImpact(%q) = %q, want nil", c.in, *got)
		case c.want != nil && (got == nil || *got != *c.want):
			t.Errorf("normalizeImpact(%q) = %v, want %q", c.in, got, *c.want)
		}
	}
}
