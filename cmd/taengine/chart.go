package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/chart"
)

var (
	chartInterval string
	chartOut      string
)

var chartCmd = &cobra.Command{
	Use:   "chart [symbol]",
	Short: "Render an HTML chart of a symbol's indicators",
	Args:  cobra.ExactArgs(1),
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartInterval, "interval", "", "candle interval (default from config)")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output file (default <symbol>_<interval>.html)")

	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	svc, err := newService(cfg, log, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Collector.Timeout+5*time.Second)
	defer cancel()

	report, err := svc.Analyze(ctx, analysis.Target{
		Symbol:   strings.ToUpper(args[0]),
		Interval: chartInterval,
	})
	if err != nil {
		return err
	}

	out := chartOut
	if out == "" {
		out = fmt.Sprintf("%s_%s.html", report.Symbol, report.Interval)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := chart.Render(f, report); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info("chart written", zap.String("path", out), zap.Int("bars", report.Len()))
	return nil
}
