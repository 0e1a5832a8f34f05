// Package httputil holds the JSON response helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "downloadgate/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every error the gate returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const internalMessage = "Internal server error."

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteText writes a plain text body with the given status.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteError translates a domain error into its HTTP status and envelope.
// Errors without a domain code are reported as internal errors and their text
// is never sent to the client.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: internalMessage,
		})
		return
	}
	WriteJSON(w, StatusFor(de.Code), ErrorResponse{
		Error:   string(de.Code),
		Message: de.Message,
	})
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeInvalidContentType:
		return http.StatusUnsupportedMediaType
	case dErrors.CodeInvalidJSON, dErrors.CodeInvalidBody, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
