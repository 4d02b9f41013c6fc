// internal/api/handler/web/handler.go
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/newthinker/taengine/internal/analysis"
)

//go:embed templates/*
var templateFS embed.FS

// Analyzer builds a live report for one target.
type Analyzer interface {
	Analyze(ctx context.Context, target analysis.Target) (*analysis.Report, error)
}

// ReportLoader reads an archived report.
type ReportLoader interface {
	Load(ctx context.Context, symbol, interval, id string) (*analysis.Report, error)
}

// Handler provides the HTML pages: the dashboard and report charts.
type Handler struct {
	pageTemplates map[string]*template.Template
	targets       []analysis.Target
	analyzer      Analyzer
	reports       ReportLoader
}

// NewHandler creates a new web handler from the embedded templates. reports
// may be nil, in which case only live charts are served.
func NewHandler(targets []analysis.Target, analyzer Analyzer, reports ReportLoader) (*Handler, error) {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("accessing embedded templates: %w", err)
	}

	pageTemplates := make(map[string]*template.Template)
	for _, page := range []string{"dashboard.html"} {
		tmpl, err := template.ParseFS(subFS, page)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return &Handler{
		pageTemplates: pageTemplates,
		targets:       targets,
		analyzer:      analyzer,
		reports:       reports,
	}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
