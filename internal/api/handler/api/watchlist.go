// internal/api/handler/api/watchlist.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/job"
	"github.com/newthinker/taengine/internal/api/response"
	"go.uber.org/zap"
)

const jobTypeWatchlist = "watchlist"

// defaultRunTimeout bounds a background watchlist run.
const defaultRunTimeout = 5 * time.Minute

// RunResult is the outcome of one watchlist run.
type RunResult struct {
	Summaries []analysis.Summary `json:"summaries"`
	Archived  int                `json:"archived"`
	Notified  bool               `json:"notified"`
}

// WatchlistHandler exposes the configured watchlist and runs it on demand.
type WatchlistHandler struct {
	targets    []analysis.Target
	analyzer   Analyzer
	archive    Archive
	notifier   Notifier
	jobs       *job.Store
	runTimeout time.Duration
	logger     *zap.Logger
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(targets []analysis.Target, analyzer Analyzer, archive Archive, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		targets:    targets,
		analyzer:   analyzer,
		archive:    archive,
		runTimeout: defaultRunTimeout,
		logger:     logger,
	}
}

// WithNotifier sends the summaries of every run to n.
func (h *WatchlistHandler) WithNotifier(n Notifier) *WatchlistHandler {
	h.notifier = n
	return h
}

// WithJobs enables ?async=true runs tracked in store.
func (h *WatchlistHandler) WithJobs(store *job.Store) *WatchlistHandler {
	h.jobs = store
	return h
}

// List handles GET /api/v1/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	targets := h.targets
	if targets == nil {
		targets = []analysis.Target{}
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"targets": targets,
	})
}

// Run handles POST /api/v1/watchlist/run. Every target is analyzed and the
// latest values are returned; reports are archived when an archive is set.
// With ?async=true the run happens in the background and a job is returned.
func (h *WatchlistHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "true" && h.jobs != nil {
		h.runAsync(w, r)
		return
	}

	result, err := h.run(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *WatchlistHandler) runAsync(w http.ResponseWriter, r *http.Request) {
	j := h.jobs.Create(jobTypeWatchlist)
	// the run outlives the request but keeps its values
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.runTimeout)

	go func() {
		defer cancel()
		h.jobs.Start(j.ID)
		result, err := h.run(ctx)
		if err != nil {
			h.logger.Warn("background watchlist run failed",
				zap.String("job_id", j.ID),
				zap.Error(err),
			)
		}
		h.jobs.Finish(j.ID, result, err)
	}()

	response.JSON(w, http.StatusAccepted, j)
}

func (h *WatchlistHandler) run(ctx context.Context) (*RunResult, error) {
	reports, err := h.analyzer.AnalyzeAll(ctx, h.targets)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Summaries: make([]analysis.Summary, 0, len(reports))}
	for _, report := range reports {
		result.Summaries = append(result.Summaries, report.Summary())
		if h.archive == nil {
			continue
		}
		if _, err := h.archive.Save(ctx, report); err != nil {
			// a failed save does not void the computed summaries
			h.logger.Warn("archiving watchlist report failed",
				zap.String("symbol", report.Symbol),
				zap.Error(err),
			)
			continue
		}
		result.Archived++
	}

	if h.notifier != nil {
		if err := h.notifier.Notify(ctx, result.Summaries); err != nil {
			h.logger.Warn("notifying watchlist summaries failed", zap.Error(err))
		} else {
			result.Notified = true
		}
	}
	return result, nil
}
