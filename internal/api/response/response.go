// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/taengine/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

var statusByCode = map[string]int{
	core.ErrInvalidArgument.Code:   http.StatusBadRequest,
	core.ErrPayloadTooLarge.Code:   http.StatusRequestEntityTooLarge,
	core.ErrUnknownIndicator.Code:  http.StatusNotFound,
	core.ErrNoData.Code:            http.StatusNotFound,
	core.ErrReportNotFound.Code:    http.StatusNotFound,
	core.ErrJobNotFound.Code:       http.StatusNotFound,
	core.ErrCollectorFailed.Code:   http.StatusBadGateway,
	core.ErrCollectorTimeout.Code:  http.StatusGatewayTimeout,
	core.ErrCollectorNotFound.Code: http.StatusServiceUnavailable,
	core.ErrUnauthorized.Code:      http.StatusUnauthorized,
	core.ErrConfigMissing.Code:     http.StatusServiceUnavailable,
}

// Status maps an error to the HTTP status it should be reported with.
func Status(err error) int {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		if status, ok := statusByCode[coreErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}

	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Fail writes err with the status chosen by Status.
func Fail(w http.ResponseWriter, err error) {
	Error(w, Status(err), err)
}
