package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/pkgtrack/pkg/errors"
)

// Envelope is the body of every API response.
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Status     string      `json:"status"`
	Code       errors.Code `json:"code,omitempty"`
	Error      string      `json:"error,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
	Data       any         `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  RequestID(r.Context()),
		Data:       data,
	})
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respond(w, r, http.StatusOK, data)
}

func respondNoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError maps err to a status and writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       code,
		Error:      errors.UserMessage(err),
		RequestID:  RequestID(r.Context()),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeUpstream, errors.ErrCodeInvalidResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
