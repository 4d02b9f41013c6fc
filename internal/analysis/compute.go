package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Compute builds a report over candle columns. Each SMA length is computed
// once and shared with RMA, STDEV and BB; the remaining indicators run
// concurrently over the same read-only input.
func Compute(ctx context.Context, cols core.Columns, p Params, rec Recorder) (*Report, error) {
	rec = orNop(rec)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	_, span := tracing.StartSpan(ctx, "analysis.compute")
	span.SetAttributes(attribute.Int("bars", cols.Len()))
	defer span.End()

	rec.RecordSeriesLength(cols.Len())
	close := cols.Close

	means := make(map[int][]float64)
	for _, length := range []int{p.SMALength, p.RMALength, p.StdevLength, p.BBLength} {
		if _, ok := means[length]; ok {
			continue
		}
		mean, err := timed(rec, SMA, func() ([]float64, error) {
			return indicator.SMA(close, length)
		})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("computing sma(%d): %w", length, err)
		}
		means[length] = mean
	}

	var (
		ema, rma, rsi, sd, tr, atr []float64
		bands                      indicator.Bands
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		ema, err = timed(rec, EMA, func() ([]float64, error) {
			return indicator.EMA(close, p.EMALength)
		})
		return err
	})
	g.Go(func() (err error) {
		rma, err = timed(rec, RMA, func() ([]float64, error) {
			return indicator.RMAWithSeed(close, means[p.RMALength], p.RMALength)
		})
		return err
	})
	g.Go(func() (err error) {
		rsi, err = timed(rec, RSI, func() ([]float64, error) {
			return indicator.RSI(close, p.RSILength)
		})
		return err
	})
	g.Go(func() (err error) {
		sd, err = timed(rec, STDEV, func() ([]float64, error) {
			return indicator.STDEVWithMean(close, means[p.StdevLength], p.StdevLength, p.Biased)
		})
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		bands, err = indicator.BBWithBasis(close, means[p.BBLength], p.BBLength, p.BBMult)
		rec.RecordComputation(BB, err, time.Since(start).Seconds())
		return err
	})
	g.Go(func() (err error) {
		tr, err = timed(rec, TR, func() ([]float64, error) {
			return indicator.TrueRange(cols.High, cols.Low, close)
		})
		if err != nil {
			return err
		}
		// ATR is RMA over the true range just computed
		atr, err = timed(rec, ATR, func() ([]float64, error) {
			return indicator.RMA(tr, p.ATRLength)
		})
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("computing indicators: %w", err)
	}

	return &Report{
		Params: p,
		Times:  cols.Times,
		Close:  indicator.Series(close),
		Series: map[string]indicator.Series{
			SMA:   means[p.SMALength],
			EMA:   ema,
			RMA:   rma,
			RSI:   rsi,
			STDEV: sd,
			TR:    tr,
			ATR:   atr,
		},
		Bands: bands,
	}, nil
}

func timed(rec Recorder, name string, fn func() ([]float64, error)) ([]float64, error) {
	start := time.Now()
	out, err := fn()
	rec.RecordComputation(name, err, time.Since(start).Seconds())
	return out, err
}
