// internal/api/handler/web/dashboard.go
package web

import (
	"net/http"

	"github.com/newthinker/taengine/internal/analysis"
)

// DashboardData holds data for the dashboard template
type DashboardData struct {
	Title      string
	Targets    []analysis.Target
	Indicators []string
}

// Dashboard renders the dashboard page
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, "dashboard.html", DashboardData{
		Title:      "taengine",
		Targets:    h.targets,
		Indicators: analysis.Names(),
	})
}
