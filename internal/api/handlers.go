package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ratebank/internal/bank"
)

// RateService is the subset of the rate bank used by the HTTP layer.
type RateService interface {
	Rate(ctx context.Context, from, to string) (float64, error)
	Rates() []bank.RatePair
	UpdateRates(ctx context.Context, straight bool) ([]bank.Record, error)
	MemoryTimestamp() (time.Time, bool)
	Source() string
}

// RateResponse represents the response for a single currency pair
type RateResponse struct {
	From           string  `json:"from" example:"EUR"`
	To             string  `json:"to" example:"GBP"`
	Rate           float64 `json:"rate" example:"0.8823"`
	RatesTimestamp string  `json:"rates_timestamp,omitempty" example:"2025-12-01T10:15:30Z"`
}

// RatesResponse represents a snapshot of the rate table
type RatesResponse struct {
	Source         string          `json:"source" example:"USD"`
	RatesTimestamp string          `json:"rates_timestamp,omitempty" example:"2025-12-01T10:15:30Z"`
	Rates          []bank.RatePair `json:"rates"`
}

// RefreshResponse represents the result of a forced refresh
type RefreshResponse struct {
	Updated        int    `json:"updated" example:"162"`
	Straight       bool   `json:"straight" example:"true"`
	RatesTimestamp string `json:"rates_timestamp,omitempty" example:"2025-12-01T10:15:30Z"`
}

// HandleGetRate godoc
// @Summary Get exchange rate for a currency pair
// @Description Returns the rate converting one unit of `from` into `to`. Refreshes the rate table first when it is expired or stale. Inverse and cross rates are derived through the source currency.
// @Tags rates
// @Produce json
// @Param from path string true "Currency to convert from (3 letters)" minlength(3) maxlength(3)
// @Param to path string true "Currency to convert to (3 letters)" minlength(3) maxlength(3)
// @Success 200 {object} RateResponse "Rate found"
// @Failure 400 {object} ErrorResponse "Invalid currency code format"
// @Failure 404 {object} ErrorResponse "No rate available for the given pair"
// @Failure 502 {object} ErrorResponse "Rates provider unreachable"
// @Failure 503 {object} ErrorResponse "Rates provider is not configured"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/{from}/{to} [get]
func HandleGetRate(svc RateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := strings.ToUpper(chi.URLParam(r, "from"))
		to := strings.ToUpper(chi.URLParam(r, "to"))

		rate, err := svc.Rate(r.Context(), from, to)
		if err != nil {
			if errors.Is(err, bank.ErrRateUnavailable) {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No rate available for " + from + "/" + to})
				return
			}
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, RateResponse{
			From:           from,
			To:             to,
			Rate:           rate,
			RatesTimestamp: formatTimestamp(svc.MemoryTimestamp()),
		})
	}
}

// HandleListRates godoc
// @Summary List the current rate table
// @Description Returns every rate held in memory, derived rates included. Does NOT trigger a refresh.
// @Tags rates
// @Produce json
// @Success 200 {object} RatesResponse "Current rate table"
// @Router /rates [get]
func HandleListRates(svc RateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates := svc.Rates()
		if rates == nil {
			rates = []bank.RatePair{}
		}
		writeJSON(w, http.StatusOK, RatesResponse{
			Source:         svc.Source(),
			RatesTimestamp: formatTimestamp(svc.MemoryTimestamp()),
			Rates:          rates,
		})
	}
}

// HandleRefreshRates godoc
// @Summary Force a rate table refresh
// @Description Reloads the rate table. A straight refresh goes to the pricing service first, a careful one reads the shared cache first; either falls back to the other once.
// @Tags rates
// @Produce json
// @Param straight query bool false "Fetch from the pricing service first" default(true)
// @Success 200 {object} RefreshResponse "Refresh completed"
// @Failure 400 {object} ErrorResponse "Invalid straight parameter"
// @Failure 502 {object} ErrorResponse "Rates provider unreachable"
// @Failure 503 {object} ErrorResponse "Rates provider is not configured"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/refresh [post]
func HandleRefreshRates(svc RateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		straight := true
		if raw := r.URL.Query().Get("straight"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "straight must be a boolean"})
				return
			}
			straight = v
		}

		records, err := svc.UpdateRates(r.Context(), straight)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, RefreshResponse{
			Updated:        len(records),
			Straight:       straight,
			RatesTimestamp: formatTimestamp(svc.MemoryTimestamp()),
		})
	}
}
