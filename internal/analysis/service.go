package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/taengine/internal/collector"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/logger"
	"github.com/newthinker/taengine/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Target names one symbol/interval pair to analyze.
type Target struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
}

// Options configures a Service.
type Options struct {
	Params      Params
	Interval    string // used when a target leaves Interval empty
	Limit       int
	Concurrency int
	Recorder    Recorder
	Logger      *zap.Logger
}

// Service fetches candles from a collector and turns them into reports.
type Service struct {
	collector collector.Collector
	opts      Options
	rec       Recorder
	log       *zap.Logger
	now       func() time.Time
}

// NewService creates a new analysis service.
func NewService(c collector.Collector, opts Options) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Service{
		collector: c,
		opts:      opts,
		rec:       orNop(opts.Recorder),
		log:       logger.OrNop(opts.Logger),
		now:       time.Now,
	}
}

// Params returns the indicator parameters used for reports.
func (s *Service) Params() Params {
	return s.opts.Params
}

// Analyze fetches the candle history for target and computes a report.
func (s *Service) Analyze(ctx context.Context, target Target) (*Report, error) {
	target.Symbol = collector.NormalizeSymbol(target.Symbol, "")
	if target.Interval == "" {
		target.Interval = s.opts.Interval
	}

	ctx, span := tracing.StartSpan(ctx, "analysis.analyze")
	span.SetAttributes(
		attribute.String("symbol", target.Symbol),
		attribute.String("interval", target.Interval),
	)
	defer span.End()

	candles, err := s.fetch(ctx, target)
	if err != nil {
		span.RecordError(err)
		s.rec.RecordReport(err)
		return nil, err
	}

	report, err := Compute(ctx, core.SplitColumns(candles), s.opts.Params, s.rec)
	s.rec.RecordReport(err)
	if err != nil {
		s.log.Error("building report failed",
			zap.String("symbol", target.Symbol),
			zap.Error(err),
		)
		return nil, err
	}

	// v7 IDs sort by creation time, which the report archive relies on
	report.ID = uuid.Must(uuid.NewV7()).String()
	report.Symbol = candles[0].Symbol
	report.Interval = target.Interval
	report.Provider = s.collector.Name()
	report.GeneratedAt = s.now().UTC()

	s.log.Debug("report built",
		zap.String("id", report.ID),
		zap.String("symbol", report.Symbol),
		zap.String("interval", report.Interval),
		zap.Int("bars", report.Len()),
	)

	return report, nil
}

// AnalyzeAll analyzes targets concurrently. Reports are returned in target
// order; the first failure cancels the remaining fetches.
func (s *Service) AnalyzeAll(ctx context.Context, targets []Target) ([]*Report, error) {
	reports := make([]*Report, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, target := range targets {
		g.Go(func() error {
			report, err := s.Analyze(ctx, target)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", target.Symbol, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Service) fetch(ctx context.Context, target Target) ([]core.OHLCV, error) {
	ctx, span := tracing.StartSpan(ctx, "collector.fetch_history")
	span.SetAttributes(attribute.String("provider", s.collector.Name()))
	defer span.End()

	start := time.Now()
	candles, err := s.collector.FetchHistory(ctx, collector.Request{
		Symbol:   target.Symbol,
		Interval: target.Interval,
		Limit:    s.opts.Limit,
	})
	s.rec.RecordFetch(s.collector.Name(), len(candles), err, time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("fetching candles failed",
			zap.String("provider", s.collector.Name()),
			zap.String("symbol", target.Symbol),
			zap.Error(err),
		)
		return nil, err
	}
	if len(candles) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no candles for %s %s", target.Symbol, target.Interval))
	}

	s.log.Debug("candles fetched",
		zap.String("symbol", target.Symbol),
		zap.Int("count", len(candles)),
		zap.Duration("took", time.Since(start)),
	)
	return candles, nil
}
