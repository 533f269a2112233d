package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// translateBatchSize caps how many event names are sent per translation
// call.
const translateBatchSize = 50

// LLMClient talks to a chat-completion gateway. It backs both scenario
// text generation and calendar batch translation.
type LLMClient struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
	logger  *slog.Logger
}

// NewLLMClient creates the client. An empty apiKey produces a client
// that reports unconfigured and fails every call fast.
func NewLLMClient(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *LLMClient {
	return &LLMClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		hc:      newHTTPClient(timeout),
		logger:  logger.With("adapter", "llm"),
	}
}

// Configured reports whether an API key is present.
func (c *LLMClient) Configured() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-user-message completion and returns the reply
// text.
func (c *LLMClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := postJSON(ctx, c.hc, c.baseURL+"/v1/chat/completions", headers, reqBody, &resp); err != nil {
		c.logger.Error("completion_failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// TranslateBatch translates the given names into lang, batching the
// gateway calls. The returned map only contains names that translated
// cleanly; callers keep originals for everything else. A batch that
// fails is skipped, it never fails the whole translation.
func (c *LLMClient) TranslateBatch(ctx context.Context, names []string, lang string) (map[string]string, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	out := make(map[string]string, len(names))
	for start := 0; start < len(names); start += translateBatchSize {
		end := start + translateBatchSize
		if end > len(names) {
			end = len(names)
		}
		batch := names[start:end]

		translated, err := c.translateOne(ctx, batch, lang)
		if err != nil {
			c.logger.Warn("translation_batch_failed", "offset", start, "size", len(batch), "error", err)
			if start == 0 && end == len(names) {
				return nil, err
			}
			continue
		}
		for name, tr := range translated {
			out[name] = tr
		}
	}
	return out, nil
}

func (c *LLMClient) translateOne(ctx context.Context, batch []string, lang string) (map[string]string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following economic event names into %s. ", lang)
	sb.WriteString("Reply with one line per item, formatted as \"<number>. <translation>\", nothing else.\n")
	for i, name := range batch {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, name)
	}

	content, err := c.Complete(ctx, sb.String(), 0.2)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(batch))
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		num, rest, found := strings.Cut(line, ".")
		if !found {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || idx < 1 || idx > len(batch) {
			continue
		}
		if tr := strings.TrimSpace(rest); tr != "" {
			out[batch[idx-1]] = tr
		}
	}
	return out, nil
}
