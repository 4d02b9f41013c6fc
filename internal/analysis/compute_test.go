package analysis

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures metrics calls for assertions.
type recorder struct {
	mu           sync.Mutex
	computations map[string]int
	failures     int
	fetches      int
	reports      int
	lengths      []int
}

func newRecorder() *recorder {
	return &recorder{computations: make(map[string]int)}
}

func (r *recorder) RecordComputation(name string, err error, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.computations[name]++
	if err != nil {
		r.failures++
	}
}

func (r *recorder) RecordSeriesLength(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lengths = append(r.lengths, n)
}

func (r *recorder) RecordFetch(string, int, error, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
}

func (r *recorder) RecordReport(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports++
}

func sampleCandles(n int) []core.OHLCV {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.OHLCV, n)
	for i := range candles {
		base := 100 + 10*math.Sin(float64(i)/4)
		candles[i] = core.OHLCV{
			Symbol:   "BTCUSDT",
			Interval: "15m",
			Open:     base - 0.5,
			High:     base + 2,
			Low:      base - 2,
			Close:    base,
			Time:     t0.Add(time.Duration(i) * 15 * time.Minute),
		}
	}
	return candles
}

func TestCompute_MatchesIndicators(t *testing.T) {
	cols := core.SplitColumns(sampleCandles(60))
	p := DefaultParams()
	rec := newRecorder()

	report, err := Compute(context.Background(), cols, p, rec)
	require.NoError(t, err)
	require.Equal(t, 60, report.Len())

	want := map[string]func() ([]float64, error){
		SMA:   func() ([]float64, error) { return indicator.SMA(cols.Close, p.SMALength) },
		EMA:   func() ([]float64, error) { return indicator.EMA(cols.Close, p.EMALength) },
		RMA:   func() ([]float64, error) { return indicator.RMA(cols.Close, p.RMALength) },
		RSI:   func() ([]float64, error) { return indicator.RSI(cols.Close, p.RSILength) },
		STDEV: func() ([]float64, error) { return indicator.STDEV(cols.Close, p.StdevLength, p.Biased) },
		TR:    func() ([]float64, error) { return indicator.TrueRange(cols.High, cols.Low, cols.Close) },
		ATR:   func() ([]float64, error) { return indicator.ATR(cols.High, cols.Low, cols.Close, p.ATRLength) },
	}
	for name, fn := range want {
		expected, err := fn()
		require.NoError(t, err)
		assertSameSeries(t, name, expected, report.Series[name])
	}

	bands, err := indicator.BB(cols.Close, p.BBLength, p.BBMult)
	require.NoError(t, err)
	assertSameSeries(t, "bb.upper", bands.Upper, report.Bands.Upper)
	assertSameSeries(t, "bb.lower", bands.Lower, report.Bands.Lower)

	assert.Equal(t, 1, rec.computations[BB])
	assert.Equal(t, 1, rec.computations[ATR])
	assert.Zero(t, rec.failures)
	assert.Equal(t, []int{60}, rec.lengths)
}

func TestCompute_SharesMeanAcrossLengths(t *testing.T) {
	p := DefaultParams()
	p.SMALength, p.RMALength, p.StdevLength, p.BBLength = 10, 10, 10, 10
	rec := newRecorder()

	_, err := Compute(context.Background(), core.SplitColumns(sampleCandles(30)), p, rec)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.computations[SMA], "one SMA pass for a shared length")
}

func TestCompute_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.RSILength = 0

	report, err := Compute(context.Background(), core.SplitColumns(sampleCandles(10)), p, nil)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, core.ErrInvalidArgument), "got %v", err)
}

func TestCompute_Empty(t *testing.T) {
	report, err := Compute(context.Background(), core.SplitColumns(nil), DefaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Len())
	assert.Empty(t, report.Series[RSI])
	assert.True(t, indicator.IsNA(report.Last(RSI)))
}

func TestCompute_ToleratesMissingCandles(t *testing.T) {
	candles := sampleCandles(40)
	candles[20].Close = math.NaN()
	cols := core.SplitColumns(candles)

	report, err := Compute(context.Background(), cols, DefaultParams(), nil)
	require.NoError(t, err)

	assert.True(t, indicator.IsNA(report.Series[EMA][20]), "EMA propagates the gap")
	assert.False(t, indicator.IsNA(report.Series[RMA][20]), "RMA holds across the gap")
	assert.True(t, indicator.IsNA(report.Series[TR][20]))
}

func assertSameSeries(t *testing.T, name string, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want), name)
	for i := range want {
		if indicator.IsNA(want[i]) {
			assert.True(t, indicator.IsNA(got[i]), "%s[%d] = %v, want NA", name, i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-12, "%s[%d]", name, i)
	}
}
