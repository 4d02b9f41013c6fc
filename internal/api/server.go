// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	apihandler "github.com/newthinker/taengine/internal/api/handler/api"
	"github.com/newthinker/taengine/internal/api/handler/web"
	"github.com/newthinker/taengine/internal/api/job"
	"github.com/newthinker/taengine/internal/api/middleware"
	"github.com/newthinker/taengine/internal/metrics"
	"github.com/newthinker/taengine/internal/notifier"
	"github.com/newthinker/taengine/internal/storage/archive"
	"go.uber.org/zap"
)

// Background watchlist runs are kept in memory this long.
const (
	jobCapacity = 100
	jobTTL      = time.Hour
)

// Server represents the HTTP server for the indicator engine
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies holds the components the handlers are built on.
type Dependencies struct {
	Analyzer  *analysis.Service
	Archive   *archive.ReportStore // nil disables the report routes
	Metrics   *metrics.Registry    // nil disables metrics
	Notifiers *notifier.Registry   // nil or empty skips notification
	Watchlist []analysis.Target
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, errors.New("analyzer is required")
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	// typed nil pointers must not leak into the handler interfaces
	var (
		store  apihandler.Archive
		loader web.ReportLoader
		rec    apihandler.ComputationRecorder
	)
	if deps.Archive != nil {
		store, loader = deps.Archive, deps.Archive
	}
	if deps.Metrics != nil {
		rec = deps.Metrics
	}

	webHandler, err := web.NewHandler(deps.Watchlist, deps.Analyzer, loader)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	s.mux.HandleFunc("GET /{$}", webHandler.Dashboard)
	s.mux.HandleFunc("GET /chart", webHandler.Chart)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, deps.Metrics.Handler())
	}

	auth := middleware.APIKeyAuth(cfg.APIKey)
	route := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, auth(h))
	}

	indicators := apihandler.NewIndicatorsHandler(rec)
	route("GET /api/v1/indicators", indicators.List)
	route("POST /api/v1/indicators/{name}", indicators.Compute)

	analysisHandler := apihandler.NewAnalysisHandler(deps.Analyzer, store, s.logger)
	route("GET /api/v1/analysis", analysisHandler.Get)

	jobs := job.NewStore(jobCapacity, jobTTL)
	watchlist := apihandler.NewWatchlistHandler(deps.Watchlist, deps.Analyzer, store, s.logger).WithJobs(jobs)
	if deps.Notifiers != nil && deps.Notifiers.Len() > 0 {
		watchlist.WithNotifier(deps.Notifiers)
	}
	route("GET /api/v1/watchlist", watchlist.List)
	route("POST /api/v1/watchlist/run", watchlist.Run)

	jobsHandler := apihandler.NewJobsHandler(jobs)
	route("GET /api/v1/jobs", jobsHandler.List)
	route("GET /api/v1/jobs/{id}", jobsHandler.Get)

	if store != nil {
		reports := apihandler.NewReportsHandler(store)
		route("GET /api/v1/reports", reports.List)
		route("GET /api/v1/reports/{symbol}/{interval}/{id}", reports.Get)
		route("DELETE /api/v1/reports/{symbol}/{interval}/{id}", reports.Delete)
	}

	return nil
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
