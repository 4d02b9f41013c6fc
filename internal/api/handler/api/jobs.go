// internal/api/handler/api/jobs.go
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/newthinker/taengine/internal/api/job"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/core"
)

// JobsHandler reports on background runs.
type JobsHandler struct {
	store *job.Store
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store *job.Store) *JobsHandler {
	return &JobsHandler{store: store}
}

// List handles GET /api/v1/jobs. ?done=true or ?done=false keeps only
// finished or unfinished jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.store.List()
	if done := r.URL.Query().Get("done"); done != "" {
		want, err := strconv.ParseBool(done)
		if err != nil {
			response.Fail(w, core.WrapError(core.ErrInvalidArgument, fmt.Errorf("done must be a boolean, got %q", done)))
			return
		}
		kept := jobs[:0]
		for _, j := range jobs {
			if j.Done() == want {
				kept = append(kept, j)
			}
		}
		jobs = kept
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// Get handles GET /api/v1/jobs/{id}
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}
