package binance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/newthinker/taengine/internal/collector"
	"github.com/newthinker/taengine/internal/core"
)

// MaxLimit is the most bars one request may ask for.
const MaxLimit = 1000

const defaultTimeout = 10 * time.Second

var intervals = map[string]bool{
	"1s": true, "1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// Supports reports whether interval is a Binance kline interval.
func Supports(interval string) bool {
	return intervals[interval]
}

// Config holds Binance client settings. Keys are optional for market data.
type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

// Binance fetches spot klines from the Binance REST API
type Binance struct {
	client  *gobinance.Client
	timeout time.Duration
}

var _ collector.Collector = (*Binance)(nil)

// New creates a new Binance collector
func New(cfg Config) *Binance {
	client := gobinance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Binance{
		client:  client,
		timeout: timeout,
	}
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistory fetches klines oldest first. Price fields that fail to parse
// are reported as NaN so they flow into the indicators as missing samples.
func (b *Binance) FetchHistory(ctx context.Context, req collector.Request) ([]core.OHLCV, error) {
	symbol := collector.NormalizeSymbol(req.Symbol, "")
	if err := collector.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if !Supports(req.Interval) {
		return nil, core.WrapError(core.ErrInvalidArgument, fmt.Errorf("unsupported interval %q", req.Interval))
	}
	if req.Limit < 0 || req.Limit > MaxLimit {
		return nil, core.WrapError(core.ErrInvalidArgument,
			fmt.Errorf("limit must be between 0 (provider default) and %d, got %d", MaxLimit, req.Limit))
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	svc := b.client.NewKlinesService().Symbol(symbol).Interval(req.Interval)
	if req.Limit > 0 {
		svc = svc.Limit(req.Limit)
	}
	if !req.Start.IsZero() {
		svc = svc.StartTime(req.Start.UnixMilli())
	}
	if !req.End.IsZero() {
		svc = svc.EndTime(req.End.UnixMilli())
	}

	klines, err := svc.Do(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, core.WrapError(core.ErrCollectorTimeout, err)
		}
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("fetching klines for %s: %w", symbol, err))
	}

	data := make([]core.OHLCV, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		data = append(data, core.OHLCV{
			Symbol:   symbol,
			Interval: req.Interval,
			Open:     parsePrice(k.Open),
			High:     parsePrice(k.High),
			Low:      parsePrice(k.Low),
			Close:    parsePrice(k.Close),
			Volume:   parsePrice(k.Volume),
			Time:     time.UnixMilli(k.OpenTime).UTC(),
		})
	}

	return data, nil
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
