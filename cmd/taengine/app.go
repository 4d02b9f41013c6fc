package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/collector"
	"github.com/newthinker/taengine/internal/collector/binance"
	"github.com/newthinker/taengine/internal/collector/okx"
	"github.com/newthinker/taengine/internal/config"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/logger"
	"github.com/newthinker/taengine/internal/metrics"
	"github.com/newthinker/taengine/internal/notifier"
	"github.com/newthinker/taengine/internal/notifier/email"
	"github.com/newthinker/taengine/internal/notifier/telegram"
	"github.com/newthinker/taengine/internal/notifier/webhook"
	"github.com/newthinker/taengine/internal/storage/archive"
)

// loadConfig reads the dotenv file, then the config file (or defaults), and
// validates the result.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg *config.Config
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	opts := logger.Options{
		Development: debug,
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
	}
	if debug {
		opts.Level = "debug"
	}
	return logger.New(opts)
}

// newCollector registers the built-in collectors and picks the configured one.
func newCollector(cfg *config.Config) (collector.Collector, error) {
	// base_url overrides only the selected provider's endpoint
	baseURL := func(name string) string {
		if cfg.Collector.Provider == name {
			return cfg.Collector.BaseURL
		}
		return ""
	}

	reg := collector.NewRegistry()
	reg.Register(binance.New(binance.Config{
		BaseURL:   baseURL("binance"),
		APIKey:    cfg.Collector.APIKey,
		SecretKey: cfg.Collector.SecretKey,
		Timeout:   cfg.Collector.Timeout,
	}))
	reg.Register(okx.New(okx.Config{
		BaseURL: baseURL("okx"),
		Timeout: cfg.Collector.Timeout,
	}))

	c, ok := reg.Get(cfg.Collector.Provider)
	if !ok {
		return nil, core.WrapError(core.ErrCollectorNotFound,
			fmt.Errorf("%q (available: %v)", cfg.Collector.Provider, reg.Names()))
	}
	return c, nil
}

// newService wires the collector into an analysis service. reg may be nil.
func newService(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*analysis.Service, error) {
	c, err := newCollector(cfg)
	if err != nil {
		return nil, err
	}

	opts := analysis.Options{
		Params:   analysis.ParamsFromConfig(cfg.Indicators),
		Interval: cfg.Collector.Interval,
		Limit:    cfg.Collector.Limit,
		Logger:   log,
	}
	if reg != nil {
		opts.Recorder = reg
	}
	return analysis.NewService(c, opts), nil
}

// newArchive opens the configured report store. reg may be nil.
func newArchive(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*archive.ReportStore, error) {
	storage, err := archive.NewFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	var rec archive.ArchiveRecorder
	if reg != nil {
		rec = reg
	}
	return archive.NewReportStore(storage, rec, log), nil
}

// newNotifiers registers every notifier the config enables.
func newNotifiers(cfg *config.Config) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()
	if hook := cfg.Notify.Webhook; hook.URL != "" {
		w, err := webhook.New(webhook.Config{
			URL:     hook.URL,
			Headers: hook.Headers,
			Timeout: hook.Timeout,
		})
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		if err := reg.Register(w); err != nil {
			return nil, err
		}
	}
	if tg := cfg.Notify.Telegram; tg.BotToken != "" {
		t, err := telegram.New(telegram.Config{
			BotToken: tg.BotToken,
			ChatID:   tg.ChatID,
			BaseURL:  tg.BaseURL,
			Timeout:  tg.Timeout,
		})
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	if mail := cfg.Notify.Email; mail.Host != "" {
		e, err := email.New(email.Config{
			Host:     mail.Host,
			Port:     mail.Port,
			Username: mail.Username,
			Password: mail.Password,
			From:     mail.From,
			To:       mail.To,
		})
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		if err := reg.Register(e); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func watchlistTargets(cfg *config.Config) []analysis.Target {
	targets := make([]analysis.Target, 0, len(cfg.Watchlist))
	for _, item := range cfg.Watchlist {
		targets = append(targets, analysis.Target{Symbol: item.Symbol, Interval: item.Interval})
	}
	return targets
}
