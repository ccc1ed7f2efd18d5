// Package handler is the HTTP layer: it decodes requests, calls a service
// and writes JSON. Business rules live in the service package; the only
// HTTP knowledge about errors is the mapping in writeError.
package handler

// CONSISTENT ERROR FORMAT:
// Every error response has the same shape:
//
//	{"error": "conflict", "message": "vote conflict: already voted on this question for this place"}
//
// so the front end can branch on "error" without caring about the status.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/pawpoll/internal/apperror"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// successResponse is the body of mutations that return nothing else.
type successResponse struct {
	Success bool `json:"success"`
}

var successBody = successResponse{Success: true}

// writeJSON sends data as JSON with the given status. Headers must be set
// before WriteHeader; anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to a status code and writes it.
//
//	ErrValidation   → 400 validation_error
//	ErrUnauthorized → 401 unauthorized
//	ErrNotFound     → 404 not_found
//	ErrConflict     → 409 conflict
//	ErrUpstream     → 502 upstream_error
//	anything else   → 500 internal_error
//
// errors.Is walks the whole chain, so services may wrap freely with %w.
// Untyped errors never reach the client: their text can contain SQL or
// file paths.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.ErrorContext(r.Context(), "internal error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status, errorType := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, errorType = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, errorType = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrNotFound):
		status, errorType = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, errorType = http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUpstream):
		status, errorType = http.StatusBadGateway, "upstream_error"
	}

	writeJSON(w, status, ErrorResponse{Error: errorType, Message: appErr.Message})
}

// decodeJSON reads a JSON request body into dst. A body over the size limit
// (see middleware.NewMaxBodySizeHandler) answers 413 directly and returns
// false; any other decode failure answers 400. Rejections are logged at
// Warn on logger.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	logger.WarnContext(r.Context(), "rejected request body",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "request_too_large",
			Message: fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit),
		})
	case errors.Is(err, io.EOF):
		writeError(w, r, apperror.ValidationFailed("body", "request body is required"))
	default:
		writeError(w, r, apperror.ValidationFailed("body", "request body must be valid JSON"))
	}
	return false
}
