package notifier

import (
	"context"

	"github.com/newthinker/taengine/internal/analysis"
)

// Notifier delivers the latest indicator values of a watchlist run.
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Notify sends one batch of summaries. An empty batch is not sent.
	Notify(ctx context.Context, summaries []analysis.Summary) error
}
