package okx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/taengine/internal/collector"
	"github.com/newthinker/taengine/internal/core"
)

// MaxLimit is the most bars one request may ask for.
const MaxLimit = 300

const (
	baseURL        = "https://www.okx.com"
	defaultTimeout = 10 * time.Second
)

// bars maps the Binance-style intervals used across the engine to OKX bar
// names. Daily and longer bars use the UTC-aligned variants.
var bars = map[string]string{
	"1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1H", "2h": "2H", "4h": "4H", "6h": "6Hutc", "12h": "12Hutc",
	"1d": "1Dutc", "3d": "3Dutc", "1w": "1Wutc", "1M": "1Mutc",
}

// Supports reports whether interval maps to an OKX bar.
func Supports(interval string) bool {
	_, ok := bars[interval]
	return ok
}

// Config holds OKX client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// OKX fetches spot candles from the OKX v5 REST API
type OKX struct {
	client  *http.Client
	baseURL string
}

var _ collector.Collector = (*OKX)(nil)

// New creates a new OKX collector
func New(cfg Config) *OKX {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := baseURL
	if cfg.BaseURL != "" {
		base = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &OKX{
		client:  &http.Client{Timeout: timeout},
		baseURL: base,
	}
}

func (o *OKX) Name() string {
	return "okx"
}

// toInstID converts a normalized symbol to an OKX instrument ID,
// BTCUSDT -> BTC-USDT.
func toInstID(symbol string) (string, error) {
	base, quote := collector.ParseSymbol(symbol)
	if quote == "" {
		return "", core.WrapError(core.ErrInvalidArgument, fmt.Errorf("cannot split %q into base and quote", symbol))
	}
	return base + "-" + quote, nil
}

// FetchHistory fetches candles oldest first. OKX pages newest first, so the
// rows are reversed.
func (o *OKX) FetchHistory(ctx context.Context, req collector.Request) ([]core.OHLCV, error) {
	symbol := collector.NormalizeSymbol(req.Symbol, "")
	if err := collector.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	instID, err := toInstID(symbol)
	if err != nil {
		return nil, err
	}
	bar, ok := bars[req.Interval]
	if !ok {
		return nil, core.WrapError(core.ErrInvalidArgument, fmt.Errorf("unsupported interval %q", req.Interval))
	}
	if req.Limit < 0 || req.Limit > MaxLimit {
		return nil, core.WrapError(core.ErrInvalidArgument,
			fmt.Errorf("limit must be between 0 (provider default) and %d, got %d", MaxLimit, req.Limit))
	}

	q := url.Values{}
	q.Set("instId", instID)
	q.Set("bar", bar)
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	// after pages towards older rows, before towards newer ones
	if !req.End.IsZero() {
		q.Set("after", strconv.FormatInt(req.End.UnixMilli(), 10))
	}
	if !req.Start.IsZero() {
		q.Set("before", strconv.FormatInt(req.Start.UnixMilli(), 10))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/v5/market/candles?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, core.WrapError(core.ErrCollectorTimeout, err)
		}
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("fetching candles for %s: %w", instID, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result candleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("decoding response: %w", err))
	}
	if result.Code != "0" {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("okx error %s: %s", result.Code, result.Msg))
	}

	data := make([]core.OHLCV, 0, len(result.Data))
	for i := len(result.Data) - 1; i >= 0; i-- {
		row := result.Data[i]
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		data = append(data, core.OHLCV{
			Symbol:   symbol,
			Interval: req.Interval,
			Open:     parsePrice(row[1]),
			High:     parsePrice(row[2]),
			Low:      parsePrice(row[3]),
			Close:    parsePrice(row[4]),
			Volume:   parsePrice(row[5]),
			Time:     time.UnixMilli(ts).UTC(),
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

type candleResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}
