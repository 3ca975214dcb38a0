//go:build integration

package integration

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ratebank/internal/bank"
	"ratebank/internal/cache"
	"ratebank/internal/currency"
	"ratebank/internal/provider"
)

var (
	testDB  *sql.DB
	testRDB *redis.Client
)

const (
	jan1Payload = `[
		{"source":"USD","target":"EUR","rate":0.85,"time":"2024-01-01T00:00:00+0000"},
		{"source":"USD","target":"GBP","rate":0.75,"time":"2024-01-01T00:00:00+0000"}
	]`
	jan2Payload = `[
		{"source":"USD","target":"EUR","rate":0.9,"time":"2024-01-02T00:00:00+0000"},
		{"source":"USD","target":"GBP","rate":0.8,"time":"2024-01-02T00:00:00+0000"}
	]`
)

// resetTestData empties the rate_cache table and flushes the current Redis database.
func resetTestData(t *testing.T) {
	t.Helper()

	if _, err := testDB.ExecContext(context.Background(), "TRUNCATE TABLE rate_cache"); err != nil {
		t.Fatalf("failed to truncate rate_cache table: %v", err)
	}
	if err := testRDB.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// pricingServer is a stand-in for the rates API serving a settable payload.
type pricingServer struct {
	*httptest.Server
	mu      sync.Mutex
	payload string
	calls   atomic.Int32
}

func newPricingServer(t *testing.T, payload string) *pricingServer {
	t.Helper()
	ps := &pricingServer{payload: payload}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.calls.Add(1)
		ps.mu.Lock()
		defer ps.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ps.payload))
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pricingServer) set(payload string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.payload = payload
}

// newBank builds a bank that talks to ps over HTTP and persists into store.
func newBank(ps *pricingServer, store cache.Store) *bank.Bank {
	logger := zap.NewNop().Sugar()
	fetcher := provider.NewTransferwiseFetcher(provider.TransferwiseOptions{
		AccessKey:      "integration",
		Source:         "USD",
		BaseURL:        ps.URL,
		RaiseOnFailure: true,
		Timeout:        5 * time.Second,
	}, logger)
	return bank.New(fetcher, store, currency.ISO(), logger, bank.Options{Source: "USD"})
}
