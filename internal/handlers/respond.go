package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"qa-history/internal/contextutil"
	"qa-history/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Human-readable description of the failure
	Detail string `json:"detail"`
}

// writeJSON writes v as a JSON body with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Detail: detail,
	})
}

// handleServiceError maps service errors to HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "rejected request", "error", err)
		WriteError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)
	WriteError(w, http.StatusInternalServerError, err.Error())
}
