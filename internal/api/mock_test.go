package api

import (
	"context"
	"time"

	"ratebank/internal/bank"
)

// mockRateService implements RateService for testing.
type mockRateService struct {
	rateFunc   func(ctx context.Context, from, to string) (float64, error)
	updateFunc func(ctx context.Context, straight bool) ([]bank.Record, error)
	rates      []bank.RatePair
	timestamp  time.Time
	loaded     bool
	source     string
}

func (m *mockRateService) Rate(ctx context.Context, from, to string) (float64, error) {
	return m.rateFunc(ctx, from, to)
}

func (m *mockRateService) Rates() []bank.RatePair {
	return m.rates
}

func (m *mockRateService) UpdateRates(ctx context.Context, straight bool) ([]bank.Record, error) {
	return m.updateFunc(ctx, straight)
}

func (m *mockRateService) MemoryTimestamp() (time.Time, bool) {
	return m.timestamp, m.loaded
}

func (m *mockRateService) Source() string {
	if m.source == "" {
		return "USD"
	}
	return m.source
}

// pingerFunc adapts a function to cache.Pinger.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
