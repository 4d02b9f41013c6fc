package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/collector"
	"github.com/newthinker/taengine/internal/indicator"
)

var (
	calcInterval string
	calcLimit    int
	calcFormat   string
	calcFull     bool
	calcSave     bool
)

var calcCmd = &cobra.Command{
	Use:   "calc [symbol]",
	Short: "Compute indicators for a symbol and print the latest values",
	Long: `Fetch recent candles for a symbol, compute every indicator and print the
value at the most recent bar. JSON and YAML output carry the same summary, or
the full report with --full.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVar(&calcInterval, "interval", "", "candle interval (default from config)")
	calcCmd.Flags().IntVar(&calcLimit, "limit", 0, "number of candles to fetch (default from config)")
	calcCmd.Flags().StringVarP(&calcFormat, "format", "f", "text", "output format: text, json or yaml")
	calcCmd.Flags().BoolVar(&calcFull, "full", false, "print every series instead of the latest values")
	calcCmd.Flags().BoolVar(&calcSave, "save", false, "archive the report")

	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	switch calcFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q", calcFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if calcLimit > 0 {
		cfg.Collector.Limit = calcLimit
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
		Interval: calcInterval,
	})
	if err != nil {
		return err
	}

	if calcSave {
		store, err := newArchive(cfg, log, nil)
		if err != nil {
			return err
		}
		ref, err := store.Save(ctx, report)
		if err != nil {
			return err
		}
		log.Info("report saved", zap.String("path", ref.Path))
	}

	return writeReport(cmd.OutOrStdout(), report, calcFormat, calcFull)
}

// writeReport prints report in the requested format.
func writeReport(w io.Writer, report *analysis.Report, format string, full bool) error {
	var v any = report.Summary()
	if full {
		v = report
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeText(w, report)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeText(w io.Writer, report *analysis.Report) error {
	p := report.Params
	_, quote := collector.ParseSymbol(report.Symbol)
	price := func(v float64) string {
		if indicator.IsNA(v) {
			return "n/a"
		}
		return strings.TrimSpace(fmt.Sprintf("%.3f %s", v, quote))
	}
	plain := func(v float64) string {
		if indicator.IsNA(v) {
			return "n/a"
		}
		return fmt.Sprintf("%.3f", v)
	}

	var last time.Time
	if n := len(report.Times); n > 0 {
		last = report.Times[n-1]
	}

	lines := []string{
		fmt.Sprintf("%s %s: %d bars from %s, last %s", report.Symbol, report.Interval,
			report.Len(), report.Provider, last.UTC().Format(time.RFC3339)),
		fmt.Sprintf("CLOSE => %s", price(report.Close.Last())),
		fmt.Sprintf("EMA(%d) => %s", p.EMALength, price(report.Last(analysis.EMA))),
		fmt.Sprintf("SMA(%d) => %s", p.SMALength, price(report.Last(analysis.SMA))),
		fmt.Sprintf("RMA(%d) => %s", p.RMALength, price(report.Last(analysis.RMA))),
		fmt.Sprintf("RSI(%d) => %s", p.RSILength, plain(report.Last(analysis.RSI))),
		fmt.Sprintf("STDEV(%d) => %s", p.StdevLength, price(report.Last(analysis.STDEV))),
		fmt.Sprintf("TR => %s", price(report.Last(analysis.TR))),
		fmt.Sprintf("ATR(%d) => %s", p.ATRLength, price(report.Last(analysis.ATR))),
		fmt.Sprintf("BB(%d, %g) => %s / %s / %s", p.BBLength, p.BBMult,
			price(report.Bands.Upper.Last()), price(report.Bands.Middle.Last()), price(report.Bands.Lower.Last())),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
