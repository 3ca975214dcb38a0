package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ratebank/internal/bank"
	"ratebank/internal/cache"
	"ratebank/internal/currency"
	"ratebank/internal/provider"
)

func rateRequest(from, to string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/rates/"+from+"/"+to, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("from", from)
	rctx.URLParams.Add("to", to)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleGetRate(t *testing.T) {
	t.Run("known pair returns rate", func(t *testing.T) {
		svc := &mockRateService{
			rateFunc: func(ctx context.Context, from, to string) (float64, error) {
				if from != "EUR" || to != "GBP" {
					t.Errorf("Expected EUR/GBP, got %s/%s", from, to)
				}
				return 0.88, nil
			},
			timestamp: time.Date(2025, 12, 1, 10, 15, 30, 0, time.UTC),
			loaded:    true,
		}

		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, rateRequest("eur", "gbp"))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var resp RateResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.From != "EUR" || resp.To != "GBP" {
			t.Errorf("Expected EUR/GBP, got %s/%s", resp.From, resp.To)
		}
		if resp.Rate != 0.88 {
			t.Errorf("Expected rate 0.88, got %v", resp.Rate)
		}
		if resp.RatesTimestamp != "2025-12-01T10:15:30Z" {
			t.Errorf("Expected rates_timestamp 2025-12-01T10:15:30Z, got %q", resp.RatesTimestamp)
		}
	})

	t.Run("unavailable pair returns 404", func(t *testing.T) {
		svc := &mockRateService{
			rateFunc: func(ctx context.Context, from, to string) (float64, error) {
				return 0, bank.ErrRateUnavailable
			},
		}

		w := httptest.NewRecorder()
		HandleGetRate(svc).ServeHTTP(w, rateRequest("EUR", "XTS"))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Error != "No rate available for EUR/XTS" {
			t.Errorf("Expected specific error message, got '%s'", resp.Error)
		}
	})

	errorCases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid code returns 400", currency.ErrInvalidCode, http.StatusBadRequest},
		{"missing credential returns 503", provider.ErrMissingCredential, http.StatusServiceUnavailable},
		{"transport failure returns 502", fmt.Errorf("%w: connection refused", provider.ErrTransport), http.StatusBadGateway},
		{"cache failure returns 500", fmt.Errorf("%w: disk full", cache.ErrInvalidCache), http.StatusInternalServerError},
		{"unexpected error returns 500", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRateService{
				rateFunc: func(ctx context.Context, from, to string) (float64, error) {
					return 0, tc.err
				},
			}

			w := httptest.NewRecorder()
			HandleGetRate(svc).ServeHTTP(w, rateRequest("USD", "EUR"))

			if w.Code != tc.code {
				t.Errorf("Expected status %d, got %d", tc.code, w.Code)
			}
		})
	}
}

func TestHandleListRates(t *testing.T) {
	t.Run("returns snapshot", func(t *testing.T) {
		svc := &mockRateService{
			rates: []bank.RatePair{
				{From: "EUR", To: "USD", Rate: 1 / 0.85},
				{From: "USD", To: "EUR", Rate: 0.85},
			},
			timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			loaded:    true,
			source:    "USD",
		}

		w := httptest.NewRecorder()
		HandleListRates(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rates", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var resp RatesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Source != "USD" {
			t.Errorf("Expected source USD, got %s", resp.Source)
		}
		if len(resp.Rates) != 2 {
			t.Errorf("Expected 2 rates, got %d", len(resp.Rates))
		}
		if resp.RatesTimestamp != "2024-01-01T00:00:00Z" {
			t.Errorf("Unexpected rates_timestamp %q", resp.RatesTimestamp)
		}
	})

	t.Run("empty table renders empty list", func(t *testing.T) {
		svc := &mockRateService{}

		w := httptest.NewRecorder()
		HandleListRates(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rates", nil))

		var raw map[string]json.RawMessage
		if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if string(raw["rates"]) != "[]" {
			t.Errorf("Expected empty rates list, got %s", raw["rates"])
		}
		if _, ok := raw["rates_timestamp"]; ok {
			t.Error("Expected rates_timestamp to be omitted before the first load")
		}
	})
}

func TestHandleRefreshRates(t *testing.T) {
	t.Run("defaults to straight refresh", func(t *testing.T) {
		var gotStraight bool
		svc := &mockRateService{
			updateFunc: func(ctx context.Context, straight bool) ([]bank.Record, error) {
				gotStraight = straight
				return []bank.Record{{Target: "EUR", Rate: 0.85}, {Target: "GBP", Rate: 0.75}}, nil
			},
		}

		w := httptest.NewRecorder()
		HandleRefreshRates(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rates/refresh", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !gotStraight {
			t.Error("Expected a straight refresh by default")
		}

		var resp RefreshResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Updated != 2 {
			t.Errorf("Expected 2 updated records, got %d", resp.Updated)
		}
	})

	t.Run("careful refresh", func(t *testing.T) {
		gotStraight := true
		svc := &mockRateService{
			updateFunc: func(ctx context.Context, straight bool) ([]bank.Record, error) {
				gotStraight = straight
				return nil, nil
			},
		}

		w := httptest.NewRecorder()
		HandleRefreshRates(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rates/refresh?straight=false", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if gotStraight {
			t.Error("Expected a careful refresh")
		}
	})

	t.Run("invalid flag returns 400", func(t *testing.T) {
		svc := &mockRateService{}

		w := httptest.NewRecorder()
		HandleRefreshRates(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rates/refresh?straight=maybe", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("transport failure returns 502", func(t *testing.T) {
		svc := &mockRateService{
			updateFunc: func(ctx context.Context, straight bool) ([]bank.Record, error) {
				return nil, fmt.Errorf("%w: timeout", provider.ErrTransport)
			},
		}

		w := httptest.NewRecorder()
		HandleRefreshRates(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rates/refresh", nil))

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HandleHealthz()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestHandleReadyz(t *testing.T) {
	t.Run("no pingers is ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleReadyz(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("failing pinger returns 503", func(t *testing.T) {
		ok := pingerFunc(func(context.Context) error { return nil })
		down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

		w := httptest.NewRecorder()
		HandleReadyz(ok, down).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}
