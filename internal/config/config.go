package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/taengine/internal/collector/binance"
	"github.com/newthinker/taengine/internal/collector/okx"
	"github.com/newthinker/taengine/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Collector  CollectorConfig  `mapstructure:"collector"`
	Indicators IndicatorsConfig `mapstructure:"indicators"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Watchlist  []WatchlistItem  `mapstructure:"watchlist"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// CollectorConfig selects and tunes the candle source.
type CollectorConfig struct {
	Provider  string        `mapstructure:"provider"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Interval  string        `mapstructure:"interval"`
	Limit     int           `mapstructure:"limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// IndicatorsConfig holds the parameters used when building reports.
type IndicatorsConfig struct {
	SMALength   int     `mapstructure:"sma_length"`
	EMALength   int     `mapstructure:"ema_length"`
	RMALength   int     `mapstructure:"rma_length"`
	RSILength   int     `mapstructure:"rsi_length"`
	ATRLength   int     `mapstructure:"atr_length"`
	StdevLength int     `mapstructure:"stdev_length"`
	Biased      bool    `mapstructure:"biased"`
	BBLength    int     `mapstructure:"bb_length"`
	BBMult      float64 `mapstructure:"bb_mult"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	PrettyPrint bool   `mapstructure:"pretty_print"`
}

// NotifyConfig holds the destinations for watchlist run results.
type NotifyConfig struct {
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Email    EmailConfig    `mapstructure:"email"`
}

// WebhookConfig enables the webhook notifier when URL is set.
type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// TelegramConfig enables the Telegram notifier when BotToken is set.
type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EmailConfig enables the SMTP notifier when Host is set.
type EmailConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

type WatchlistItem struct {
	Symbol   string `mapstructure:"symbol"`
	Interval string `mapstructure:"interval"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.SetEnvPrefix("TAENGINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults mirrors Defaults so partial files fall back per key.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("collector.provider", d.Collector.Provider)
	v.SetDefault("collector.interval", d.Collector.Interval)
	v.SetDefault("collector.limit", d.Collector.Limit)
	v.SetDefault("collector.timeout", d.Collector.Timeout)
	v.SetDefault("indicators.sma_length", d.Indicators.SMALength)
	v.SetDefault("indicators.ema_length", d.Indicators.EMALength)
	v.SetDefault("indicators.rma_length", d.Indicators.RMALength)
	v.SetDefault("indicators.rsi_length", d.Indicators.RSILength)
	v.SetDefault("indicators.atr_length", d.Indicators.ATRLength)
	v.SetDefault("indicators.stdev_length", d.Indicators.StdevLength)
	v.SetDefault("indicators.biased", d.Indicators.Biased)
	v.SetDefault("indicators.bb_length", d.Indicators.BBLength)
	v.SetDefault("indicators.bb_mult", d.Indicators.BBMult)
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("notify.webhook.timeout", d.Notify.Webhook.Timeout)
	v.SetDefault("notify.telegram.timeout", d.Notify.Telegram.Timeout)
	v.SetDefault("notify.email.port", d.Notify.Email.Port)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Collector: CollectorConfig{
			Provider: "binance",
			Interval: "15m",
			Limit:    100,
			Timeout:  10 * time.Second,
		},
		Indicators: IndicatorsConfig{
			SMALength:   9,
			EMALength:   9,
			RMALength:   15,
			RSILength:   14,
			ATRLength:   14,
			StdevLength: 20,
			Biased:      true,
			BBLength:    20,
			BBMult:      2,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "data/reports",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			ServiceName: "taengine",
		},
		Notify: NotifyConfig{
			Webhook:  WebhookConfig{Timeout: 10 * time.Second},
			Telegram: TelegramConfig{Timeout: 10 * time.Second},
			Email:    EmailConfig{Port: 587},
		},
	}
}

// providerLimits describes what each candle provider accepts.
var providerLimits = map[string]struct {
	maxLimit int
	supports func(interval string) bool
}{
	"binance": {binance.MaxLimit, binance.Supports},
	"okx":     {okx.MaxLimit, okx.Supports},
}

// validateCollector checks the limit and every configured interval against
// the selected provider.
func (c *Config) validateCollector() error {
	p, ok := providerLimits[c.Collector.Provider]
	if !ok {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown collector provider %q", c.Collector.Provider))
	}

	if c.Collector.Limit < 1 || c.Collector.Limit > p.maxLimit {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("collector limit must be between 1 and %d for %s, got %d",
				p.maxLimit, c.Collector.Provider, c.Collector.Limit))
	}

	if !p.supports(c.Collector.Interval) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("collector interval %q not supported by %s", c.Collector.Interval, c.Collector.Provider))
	}
	for i, item := range c.Watchlist {
		if item.Interval != "" && !p.supports(item.Interval) {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("watchlist[%d] interval %q not supported by %s", i, item.Interval, c.Collector.Provider))
		}
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if err := c.validateCollector(); err != nil {
		return err
	}

	lengths := map[string]int{
		"sma_length":   c.Indicators.SMALength,
		"ema_length":   c.Indicators.EMALength,
		"rma_length":   c.Indicators.RMALength,
		"rsi_length":   c.Indicators.RSILength,
		"atr_length":   c.Indicators.ATRLength,
		"stdev_length": c.Indicators.StdevLength,
		"bb_length":    c.Indicators.BBLength,
	}
	for name, n := range lengths {
		if n <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("indicators.%s must be positive, got %d", name, n))
		}
	}
	if !(c.Indicators.BBMult > 0) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("indicators.bb_mult must be positive, got %v", c.Indicators.BBMult))
	}

	// Storage validation - backend specific settings must exist
	switch c.Storage.Type {
	case "localfs":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required when type is localfs"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	if u := c.Notify.Webhook.URL; u != "" &&
		!strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("notify.webhook.url must be http or https, got %q", u))
	}

	if tg := c.Notify.Telegram; tg.BotToken != "" && tg.ChatID == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("notify.telegram.chat_id required when bot_token is set"))
	}
	if mail := c.Notify.Email; mail.Host != "" {
		if mail.From == "" || len(mail.To) == 0 {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("notify.email.from and notify.email.to required when host is set"))
		}
		if mail.Port < 1 || mail.Port > 65535 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("notify.email.port must be between 1 and 65535, got %d", mail.Port))
		}
	}

	for i, item := range c.Watchlist {
		if item.Symbol == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("watchlist[%d] symbol required", i))
		}
	}

	return nil
}
