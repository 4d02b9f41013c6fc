// Package webhook posts watchlist summaries to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
)

const defaultTimeout = 10 * time.Second

// Config configures a Webhook.
type Config struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// Payload is the JSON body sent for each run.
type Payload struct {
	Type      string             `json:"type"`
	Count     int                `json:"count"`
	SentAt    time.Time          `json:"sent_at"`
	Summaries []analysis.Summary `json:"summaries"`
}

// Webhook implements notifier.Notifier for HTTP webhooks
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
	now     func() time.Time
}

// New creates a new Webhook notifier
func New(cfg Config) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Webhook{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}, nil
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Notify(ctx context.Context, summaries []analysis.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	return w.post(ctx, Payload{
		Type:      "watchlist",
		Count:     len(summaries),
		SentAt:    w.now().UTC(),
		Summaries: summaries,
	})
}

func (w *Webhook) post(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
