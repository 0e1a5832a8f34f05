package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "downloadgate/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("store failure keeps public message only", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("disk full"), dErrors.CodeStoreWrite, "Could not store download request."))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "db_insert_failed" {
			t.Fatalf("expected error code db_insert_failed, got %q", body["error"])
		}
		if body["message"] != "Could not store download request." {
			t.Fatalf("unexpected message %q", body["message"])
		}
	})

	t.Run("validation error is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "Email format is invalid."))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Fatalf("unexpected content type %q", ct)
		}
	})

	t.Run("plain error hides its text", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: relation downloads does not exist"))

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" || body["message"] != internalMessage {
			t.Fatalf("unexpected body %v", body)
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeForbidden:          http.StatusForbidden,
		dErrors.CodeInvalidContentType: http.StatusUnsupportedMediaType,
		dErrors.CodeInvalidJSON:        http.StatusBadRequest,
		dErrors.CodeInvalidBody:        http.StatusBadRequest,
		dErrors.CodeValidation:         http.StatusBadRequest,
		dErrors.CodeRateLimited:        http.StatusTooManyRequests,
		dErrors.CodeStoreWrite:         http.StatusInternalServerError,
		dErrors.CodeNotFound:           http.StatusNotFound,
		dErrors.CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}
