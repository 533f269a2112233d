// Package upstream holds one typed client per external API. Each client
// issues a single HTTP call per fetch with a fixed timeout, maps the
// upstream shape defensively (missing fields default rather than fail)
// and does no retrying of its own.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const browserUA = "Mozilla/5.0"

// newHTTPClient builds the shared outbound client. The per-request
// timeout doubles as the adapter timeout: upstream services are
// uncontrolled third parties and a hung call must settle like any other
// failure.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 15 * time.Second}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// getJSON issues a GET and decodes the body into target. Non-2xx
// responses are errors carrying a body snippet for diagnostics.
func getJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(hc, req, target)
}

// postJSON issues a POST with a JSON body and decodes the response.
func postJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(hc, req, target)
}

func doJSON(hc *http.Client, req *http.Request, target any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("http %s failed: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
