package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/api"
	"github.com/newthinker/taengine/internal/metrics"
	"github.com/newthinker/taengine/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}

	shutdownTracing, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     Version,
		PrettyPrint: cfg.Tracing.PrettyPrint,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	svc, err := newService(cfg, log, reg)
	if err != nil {
		return err
	}
	store, err := newArchive(cfg, log, reg)
	if err != nil {
		return err
	}
	notifiers, err := newNotifiers(cfg)
	if err != nil {
		return err
	}

	log.Info("starting taengine server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("collector", cfg.Collector.Provider),
		zap.String("storage", cfg.Storage.Type),
		zap.Int("watchlist", len(cfg.Watchlist)),
		zap.Strings("notifiers", notifiers.Names()),
	)

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: cfg.Metrics.Path,
	}, api.Dependencies{
		Analyzer:  svc,
		Archive:   store,
		Metrics:   reg,
		Notifiers: notifiers,
		Watchlist: watchlistTargets(cfg),
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Info("shutting down taengine server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Warn("flushing traces failed", zap.Error(err))
	}
	return nil
}
