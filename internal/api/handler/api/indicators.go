// internal/api/handler/api/indicators.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api/response"
	"github.com/newthinker/taengine/internal/core"
)

const maxBodyBytes = 8 << 20

// IndicatorsHandler evaluates single indicators over caller-supplied series.
type IndicatorsHandler struct {
	rec ComputationRecorder
}

// NewIndicatorsHandler creates a new indicators handler. rec may be nil.
func NewIndicatorsHandler(rec ComputationRecorder) *IndicatorsHandler {
	return &IndicatorsHandler{rec: rec}
}

// List handles GET /api/v1/indicators
func (h *IndicatorsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"indicators": analysis.Names(),
	})
}

// Compute handles POST /api/v1/indicators/{name}. The body is an
// analysis.Input; missing samples are sent as null and come back as null.
func (h *IndicatorsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.PathValue("name"))

	var in analysis.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(w, core.WrapError(core.ErrPayloadTooLarge, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		response.Fail(w, core.WrapError(core.ErrInvalidArgument, fmt.Errorf("decoding body: %w", err)))
		return
	}

	start := time.Now()
	out, err := analysis.Evaluate(name, in)
	if h.rec != nil && !errors.Is(err, core.ErrUnknownIndicator) {
		h.rec.RecordComputation(name, err, time.Since(start).Seconds())
	}
	if err != nil {
		response.Fail(w, err)
		return
	}

	data := map[string]any{
		"indicator": name,
		"length":    in.Length,
	}
	if out.Bands != nil {
		data["mult"] = in.Mult
		data["bands"] = out.Bands
	} else {
		data["values"] = out.Values
	}
	response.JSON(w, http.StatusOK, data)
}
