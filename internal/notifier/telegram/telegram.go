package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/notifier"
)

const (
	apiBaseURL     = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
)

// Config configures a Telegram notifier.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string // defaults to the public Bot API
	Timeout  time.Duration
}

// Telegram implements notifier.Notifier for the Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ notifier.Notifier = (*Telegram)(nil)

// New creates a new Telegram notifier
func New(cfg Config) (*Telegram, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required")
	}
	if cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram: chat_id is required")
	}
	base := apiBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Telegram{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  base,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Notify(ctx context.Context, summaries []analysis.Summary) error {
	if len(summaries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%d watchlist results*\n\n", len(summaries)))
	for i, s := range summaries {
		sb.WriteString(formatSummary(s))
		if i < len(summaries)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return t.sendMessage(ctx, sb.String())
}

func formatSummary(s analysis.Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s* %s\n", s.Symbol, s.Interval))
	if math.IsNaN(s.Close) || math.IsInf(s.Close, 0) {
		sb.WriteString("💰 Close: n/a\n")
	} else {
		sb.WriteString(fmt.Sprintf("💰 Close: %.4f\n", s.Close))
	}
	for _, name := range notifier.SortedValueNames(s) {
		sb.WriteString(fmt.Sprintf("• %s: %.4f\n", name, s.Values[name]))
	}
	if !s.Time.IsZero() {
		sb.WriteString(fmt.Sprintf("⏰ Time: %s", s.Time.UTC().Format("2006-01-02 15:04:05")))
	}

	return sb.String()
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
