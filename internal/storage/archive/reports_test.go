package archive

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	ok, failed int
}

func (c *countingRecorder) RecordArchive(err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func newTestStore(t *testing.T) (*ReportStore, *countingRecorder) {
	t.Helper()
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	rec := &countingRecorder{}
	return NewReportStore(fs, rec, nil), rec
}

func testReport(symbol, interval, id string) *analysis.Report {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &analysis.Report{
		ID:          id,
		Symbol:      symbol,
		Interval:    interval,
		Provider:    "binance",
		GeneratedAt: t0,
		Params:      analysis.DefaultParams(),
		Times:       []time.Time{t0, t0.Add(time.Hour)},
		Close:       indicator.Series{100, 101},
		Series: map[string]indicator.Series{
			analysis.SMA: {math.NaN(), 100.5},
		},
		Bands: indicator.Bands{
			Middle: indicator.Series{math.NaN(), 100.5},
			Upper:  indicator.Series{math.NaN(), 101},
			Lower:  indicator.Series{math.NaN(), 100},
		},
	}
}

func TestReportStore_SaveLoad(t *testing.T) {
	store, rec := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Save(ctx, testReport("BTCUSDT", "1h", "r1"))
	require.NoError(t, err)
	assert.Equal(t, "reports/BTCUSDT/1h/r1.json", ref.Path)
	assert.Equal(t, 1, rec.ok)

	got, err := store.Load(ctx, "BTCUSDT", "1h", "r1")
	require.NoError(t, err)
	assert.Equal(t, "binance", got.Provider)
	assert.Equal(t, 2, got.Len())
	assert.True(t, indicator.IsNA(got.Series[analysis.SMA][0]), "NA survives the round trip")
	assert.Equal(t, 100.5, got.Series[analysis.SMA][1])
	assert.Equal(t, 101.0, got.Bands.Upper[1])
	assert.True(t, got.Times[1].Equal(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)))
}

func TestReportStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "BTCUSDT", "1h", "missing")
	assert.True(t, errors.Is(err, core.ErrReportNotFound), "got %v", err)
}

func TestReportStore_RejectsUnsafeSegments(t *testing.T) {
	store, rec := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, testReport("../etc", "1h", "r1"))
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
	assert.Equal(t, 1, rec.failed)

	_, err = store.Load(ctx, "BTCUSDT", "1h", "a/b")
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	_, err = store.List(ctx, "BTC USDT", "")
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
}

func TestReportStore_List(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, r := range []*analysis.Report{
		testReport("BTCUSDT", "1h", "0002"),
		testReport("BTCUSDT", "1h", "0001"),
		testReport("BTCUSDT", "4h", "0003"),
		testReport("ETHUSDT", "1h", "0004"),
	} {
		_, err := store.Save(ctx, r)
		require.NoError(t, err)
	}

	refs, err := store.List(ctx, "BTCUSDT", "1h")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "0001", refs[0].ID)
	assert.Equal(t, "0002", refs[1].ID)

	refs, err = store.List(ctx, "BTCUSDT", "")
	require.NoError(t, err)
	assert.Len(t, refs, 3)

	refs, err = store.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, refs, 4)

	refs, err = store.List(ctx, "SOLUSDT", "")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestReportStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, testReport("BTCUSDT", "1h", "r1"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "BTCUSDT", "1h", "r1"))
	err = store.Delete(ctx, "BTCUSDT", "1h", "r1")
	assert.True(t, errors.Is(err, core.ErrReportNotFound))
}

func TestParseReportPath(t *testing.T) {
	ref, ok := parseReportPath("reports/BTCUSDT/15m/abc.json")
	require.True(t, ok)
	assert.Equal(t, ReportRef{Symbol: "BTCUSDT", Interval: "15m", ID: "abc", Path: "reports/BTCUSDT/15m/abc.json"}, ref)

	_, ok = parseReportPath("reports/BTCUSDT/abc.json")
	assert.False(t, ok)
	_, ok = parseReportPath("other/BTCUSDT/15m/abc.txt")
	assert.False(t, ok)
}
