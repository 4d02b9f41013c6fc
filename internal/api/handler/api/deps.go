// internal/api/handler/api/deps.go
package api

import (
	"context"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/storage/archive"
)

// Analyzer builds reports from live candle data. *analysis.Service
// implements it.
type Analyzer interface {
	Analyze(ctx context.Context, target analysis.Target) (*analysis.Report, error)
	AnalyzeAll(ctx context.Context, targets []analysis.Target) ([]*analysis.Report, error)
}

// Archive stores and retrieves reports. *archive.ReportStore implements it.
type Archive interface {
	Save(ctx context.Context, report *analysis.Report) (archive.ReportRef, error)
	Load(ctx context.Context, symbol, interval, id string) (*analysis.Report, error)
	List(ctx context.Context, symbol, interval string) ([]archive.ReportRef, error)
	Delete(ctx context.Context, symbol, interval, id string) error
}

// ComputationRecorder receives per-indicator metrics. *metrics.Registry
// implements it.
type ComputationRecorder interface {
	RecordComputation(indicator string, err error, duration float64)
}

// Notifier forwards watchlist summaries. *notifier.Registry implements it.
type Notifier interface {
	Notify(ctx context.Context, summaries []analysis.Summary) error
}
