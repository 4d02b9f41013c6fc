package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/taengine/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

collector:
  provider: binance
  interval: 1h
  limit: 500

indicators:
  rsi_length: 7
  bb_mult: 2.5

storage:
  type: localfs
  path: "/tmp/taengine/reports"

watchlist:
  - symbol: BTCUSDT
    interval: 15m
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Collector.Interval != "1h" || cfg.Collector.Limit != 500 {
		t.Errorf("unexpected collector config: %+v", cfg.Collector)
	}
	if cfg.Indicators.RSILength != 7 {
		t.Errorf("expected rsi_length 7, got %d", cfg.Indicators.RSILength)
	}
	if cfg.Indicators.BBMult != 2.5 {
		t.Errorf("expected bb_mult 2.5, got %v", cfg.Indicators.BBMult)
	}
	if cfg.Storage.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Storage.Type)
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0].Symbol != "BTCUSDT" {
		t.Errorf("unexpected watchlist: %+v", cfg.Watchlist)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfgPath := writeConfig(t, `
indicators:
  ema_length: 21
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Indicators.EMALength != 21 {
		t.Errorf("expected ema_length 21, got %d", cfg.Indicators.EMALength)
	}
	if cfg.Indicators.SMALength != 9 {
		t.Errorf("expected default sma_length 9, got %d", cfg.Indicators.SMALength)
	}
	if cfg.Collector.Timeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", cfg.Collector.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_S3_SECRET", "s3cr3t")
	cfgPath := writeConfig(t, `
storage:
  type: s3
  s3:
    bucket: reports
    secret_key: "${TEST_S3_SECRET}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.S3.SecretKey != "s3cr3t" {
		t.Errorf("expected expanded secret, got %q", cfg.Storage.S3.SecretKey)
	}
}

func TestLoad_WebhookNotifier(t *testing.T) {
	t.Setenv("TEST_HOOK_TOKEN", "tok")
	cfgPath := writeConfig(t, `
notify:
  webhook:
    url: https://hooks.example.com/ta
    headers:
      authorization: "${TEST_HOOK_TOKEN}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Notify.Webhook.URL != "https://hooks.example.com/ta" {
		t.Errorf("unexpected webhook url %q", cfg.Notify.Webhook.URL)
	}
	if cfg.Notify.Webhook.Headers["authorization"] != "tok" {
		t.Errorf("expected expanded header, got %+v", cfg.Notify.Webhook.Headers)
	}
	if cfg.Notify.Webhook.Timeout != 10*time.Second {
		t.Errorf("expected default webhook timeout, got %v", cfg.Notify.Webhook.Timeout)
	}
}

func TestLoad_TelegramAndEmailNotifiers(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")
	cfgPath := writeConfig(t, `
notify:
  telegram:
    bot_token: "${TEST_BOT_TOKEN}"
    chat_id: "-100200"
  email:
    host: smtp.example.com
    from: ta@example.com
    to:
      - a@example.com
      - b@example.com
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Notify.Telegram.BotToken != "123:abc" || cfg.Notify.Telegram.ChatID != "-100200" {
		t.Errorf("unexpected telegram config: %+v", cfg.Notify.Telegram)
	}
	if cfg.Notify.Telegram.Timeout != 10*time.Second {
		t.Errorf("expected default telegram timeout, got %v", cfg.Notify.Telegram.Timeout)
	}
	if cfg.Notify.Email.Port != 587 {
		t.Errorf("expected default smtp port 587, got %d", cfg.Notify.Email.Port)
	}
	if len(cfg.Notify.Email.To) != 2 || cfg.Notify.Email.To[1] != "b@example.com" {
		t.Errorf("unexpected recipients: %v", cfg.Notify.Email.To)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Indicators.BBLength != 20 || cfg.Indicators.BBMult != 2 {
		t.Errorf("unexpected bollinger defaults: %+v", cfg.Indicators)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "limit too high",
			mutate:  func(c *Config) { c.Collector.Limit = 5000 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "okx limit above provider maximum",
			mutate:  func(c *Config) { c.Collector.Provider = "okx"; c.Collector.Limit = 500 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:   "okx limit at provider maximum",
			mutate: func(c *Config) { c.Collector.Provider = "okx"; c.Collector.Limit = 300 },
		},
		{
			name:   "binance accepts 500 bars",
			mutate: func(c *Config) { c.Collector.Limit = 500 },
		},
		{
			name:    "interval unsupported by okx",
			mutate:  func(c *Config) { c.Collector.Provider = "okx"; c.Collector.Interval = "8h" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:   "interval supported by binance",
			mutate: func(c *Config) { c.Collector.Interval = "8h" },
		},
		{
			name:    "unknown interval",
			mutate:  func(c *Config) { c.Collector.Interval = "7m" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name: "watchlist interval unsupported by okx",
			mutate: func(c *Config) {
				c.Collector.Provider = "okx"
				c.Watchlist = []WatchlistItem{{Symbol: "BTCUSDT", Interval: "1s"}}
			},
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Collector.Provider = "kraken" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "zero rsi length",
			mutate:  func(c *Config) { c.Indicators.RSILength = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "negative bb multiplier",
			mutate:  func(c *Config) { c.Indicators.BBMult = -2 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Storage.Type = "s3" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Storage.Type = "ftp" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "webhook url without scheme",
			mutate:  func(c *Config) { c.Notify.Webhook.URL = "hooks.example.com/ta" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:   "webhook url",
			mutate: func(c *Config) { c.Notify.Webhook.URL = "https://hooks.example.com/ta" },
		},
		{
			name:    "telegram without chat id",
			mutate:  func(c *Config) { c.Notify.Telegram.BotToken = "123:abc" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "email without recipients",
			mutate:  func(c *Config) { c.Notify.Email.Host = "smtp.example.com"; c.Notify.Email.From = "ta@example.com" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name: "email with bad port",
			mutate: func(c *Config) {
				c.Notify.Email = EmailConfig{Host: "smtp.example.com", Port: 70000, From: "ta@example.com", To: []string{"me@example.com"}}
			},
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "watchlist without symbol",
			mutate:  func(c *Config) { c.Watchlist = []WatchlistItem{{Interval: "1h"}} },
			wantErr: core.ErrConfigMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
