package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLLMCompleteUnconfigured(t *testing.T) {
	c := NewLLMClient("http://127.0.0.1:0", "", "some-model", time.Second, testLogger())
	if c.Configured() {
		t.Error("keyless client reports configured")
	}
	if _, err := c.Complete(context.Background(), "hi", 0.7); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestLLMComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Model != "test-model" || req.Temperature != 0.7 {
			t.Errorf("model/temperature: %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages: %+v", req.Messages)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"hello back"}}]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(srv.URL, "key", "test-model", time.Second, testLogger())
	got, err := c.Complete(context.Background(), "hello", 0.7)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello back" {
		t.Errorf("content = %q", got)
	}
}

func TestLLMCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(srv.URL, "key", "m", time.Second, testLogger())
	if _, err := c.Complete(context.Background(), "x", 0); err == nil {
		t.Error("expected error on empty choices")
	}
}

func TestLLMTranslateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompt := req.Messages[0].Content
		if !strings.Contains(prompt, "Vietnamese") {
			t.Errorf("target language missing from prompt: %q", prompt)
		}
		if !strings.Contains(prompt, "1. CPI YoY") || !strings.Contains(prompt, "2. Rate Decision") {
			t.Errorf("names missing from prompt: %q", prompt)
		}
		// Second line is malformed and must be skipped, not fatal.
		reply := "1. Chi so CPI\nnonsense line\n2.\n"
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": reply}}},
		})
	}))
	defer srv.Close()

	c := NewLLMClient(srv.URL, "key", "m", time.Second, testLogger())
	got, err := c.TranslateBatch(context.Background(), []string{"CPI YoY", "Rate Decision"}, "Vietnamese")
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if got["CPI YoY"] != "Chi so CPI" {
		t.Errorf(`got["CPI YoY"] = %q`, got["CPI YoY"])
	}
	if _, ok := got["Rate Decision"]; ok {
		t.Error("empty translation should be omitted from the map")
	}
}

func TestLLMTranslateBatchSplitsBatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		var lines []string
		for _, l := range strings.Split(req.Messages[0].Content, "\n") {
			if l != "" && l[0] >= '0' && l[0] <= '9' {
				lines = append(lines, l)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": strings.Join(lines, "\n")}}},
		})
	}))
	defer srv.Close()

	names := make([]string, 120)
	for i := range names {
		names[i] = fmt.Sprintf("event %d", i)
	}

	c := NewLLMClient(srv.URL, "key", "m", time.Second, testLogger())
	if _, err := c.TranslateBatch(context.Background(), names, "Vietnamese"); err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 batches for 120 names", calls)
	}
}
