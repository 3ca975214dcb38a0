// Package api implements HTTP handlers for the exchange rate service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ratebank/internal/api/middleware"
	"ratebank/internal/bank"
	"ratebank/internal/cache"
	"ratebank/internal/currency"
	"ratebank/internal/provider"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid currency code format"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps bank failures to status codes. Infrastructure
// failures are logged with the request-scoped logger.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, currency.ErrInvalidCode) && !errors.Is(err, bank.ErrRateUnavailable) {
		middleware.LoggerFromContext(r.Context(), zap.S()).Errorw("Rate bank failure", "error", err)
	}

	switch {
	case errors.Is(err, currency.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, provider.ErrMissingCredential):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Rates provider is not configured"})
	case errors.Is(err, provider.ErrTransport):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Rates provider unreachable"})
	case errors.Is(err, cache.ErrInvalidCache):
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Rates cache unavailable"})
	case errors.Is(err, bank.ErrRateUnavailable):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}

// formatTimestamp renders a generation timestamp, or "" when nothing was loaded.
func formatTimestamp(ts time.Time, loaded bool) string {
	if !loaded {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
