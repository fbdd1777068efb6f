package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/snonux/vocabquiz/internal/processor"
	"codeberg.org/snonux/vocabquiz/internal/session"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// mapError maps session errors to a status, a stable code and whether the
// client may simply retry
func mapError(err error) (int, string, bool) {
	var perr *session.ProducerError
	switch {
	case errors.Is(err, session.ErrNoCredential):
		return http.StatusPreconditionFailed, "no_credential", false
	case errors.Is(err, session.ErrEmptyPool):
		return http.StatusPreconditionFailed, "empty_pool", false
	case errors.Is(err, session.ErrWrongPhase):
		return http.StatusConflict, "wrong_phase", false
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "busy", true
	case errors.Is(err, session.ErrNoImageProducer):
		return http.StatusServiceUnavailable, "images_disabled", false
	case errors.Is(err, processor.ErrNothingToExport):
		return http.StatusPreconditionFailed, "nothing_to_export", false
	case errors.As(err, &perr):
		return http.StatusBadGateway, "producer_failed", perr.Retryable()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", true
	default:
		return http.StatusInternalServerError, "internal", false
	}
}

// respondError logs err and writes it to the client. Server-side failures
// are logged at ERROR, precondition failures at DEBUG.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code, retryable := mapError(err)

	level := slog.LevelDebug
	switch {
	case status >= 500 && status != http.StatusBadGateway && status != http.StatusGatewayTimeout:
		level = slog.LevelError
	case status >= 500:
		level = slog.LevelWarn
	}
	log.Log(r.Context(), level, "request failed",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"error", err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "an unexpected error occurred"
	}
	writeJSON(w, status, errorResponse{Error: message, Code: code, Retryable: retryable})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
