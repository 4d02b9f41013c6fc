package collector

import (
	"context"
	"time"

	"github.com/newthinker/taengine/internal/core"
)

// Request describes a candle history query. Zero Start/End leave the window
// to the provider; Limit caps the number of bars.
type Request struct {
	Symbol   string
	Interval string
	Limit    int
	Start    time.Time
	End      time.Time
}

// Collector defines the interface for candle data sources. Implementations
// return candles oldest first.
type Collector interface {
	Name() string
	FetchHistory(ctx context.Context, req Request) ([]core.OHLCV, error)
}
