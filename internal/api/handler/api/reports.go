// internal/api/handler/api/reports.go
package api

import (
	"net/http"
	"strings"

	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/storage/archive"
)

// ReportsHandler serves archived reports.
type ReportsHandler struct {
	archive Archive
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(archive Archive) *ReportsHandler {
	return &ReportsHandler{archive: archive}
}

// List handles GET /api/v1/reports?symbol=&interval=
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	refs, err := h.archive.List(r.Context(), strings.ToUpper(q.Get("symbol")), q.Get("interval"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	if refs == nil {
		refs = []archive.ReportRef{}
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"reports": refs,
		"count":   len(refs),
	})
}

// Get handles GET /api/v1/reports/{symbol}/{interval}/{id}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.archive.Load(r.Context(),
		strings.ToUpper(r.PathValue("symbol")), r.PathValue("interval"), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

// Delete handles DELETE /api/v1/reports/{symbol}/{interval}/{id}
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.archive.Delete(r.Context(),
		strings.ToUpper(r.PathValue("symbol")), r.PathValue("interval"), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
