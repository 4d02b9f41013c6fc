// internal/api/handler/web/chart.go
package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/chart"
	"github.com/newthinker/taengine/internal/core"
)

// Chart handles GET /chart?symbol=&interval=[&id=]. With id the archived
// report is drawn, otherwise a live one is computed.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.ToUpper(q.Get("symbol"))
	interval := q.Get("interval")
	if symbol == "" {
		response.Fail(w, core.WrapError(core.ErrInvalidArgument, errors.New("symbol is required")))
		return
	}

	var (
		report *analysis.Report
		err    error
	)
	if id := q.Get("id"); id != "" {
		if h.reports == nil {
			response.Fail(w, core.WrapError(core.ErrConfigMissing, errors.New("report archive is not configured")))
			return
		}
		report, err = h.reports.Load(r.Context(), symbol, interval, id)
	} else {
		report, err = h.analyzer.Analyze(r.Context(), analysis.Target{Symbol: symbol, Interval: interval})
	}
	if err != nil {
		response.Fail(w, err)
		return
	}

	// render fully before writing so a failure can still set the status
	var buf bytes.Buffer
	if err := chart.Render(&buf, report); err != nil {
		response.Fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
