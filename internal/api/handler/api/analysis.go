// internal/api/handler/api/analysis.go
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/core"
	"go.uber.org/zap"
)

// AnalysisHandler runs live analysis for a symbol.
type AnalysisHandler struct {
	analyzer Analyzer
	archive  Archive
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler. archive may be nil, in
// which case save requests are rejected.
func NewAnalysisHandler(analyzer Analyzer, archive Archive, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, archive: archive, logger: logger}
}

// Get handles GET /api/v1/analysis?symbol=&interval=[&view=summary][&save=true]
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := analysis.Target{
		Symbol:   strings.ToUpper(q.Get("symbol")),
		Interval: q.Get("interval"),
	}
	if target.Symbol == "" {
		response.Fail(w, core.WrapError(core.ErrInvalidArgument, errors.New("symbol is required")))
		return
	}
	save := q.Get("save") == "true"
	if save && h.archive == nil {
		response.Fail(w, core.WrapError(core.ErrConfigMissing, errors.New("report archive is not configured")))
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), target)
	if err != nil {
		response.Fail(w, err)
		return
	}

	if save {
		if _, err := h.archive.Save(r.Context(), report); err != nil {
			response.Fail(w, err)
			return
		}
	}

	if q.Get("view") == "summary" {
		response.JSON(w, http.StatusOK, report.Summary())
		return
	}
	response.JSON(w, http.StatusOK, report)
}
