package bank

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"ratebank/internal/cache"
	"ratebank/internal/currency"
	"ratebank/internal/provider"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchRates(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var body []byte
	if b := args.Get(0); b != nil {
		body = b.([]byte)
	}
	return body, args.Error(1)
}

// fakeFetcher serves a settable payload and counts calls.
type fakeFetcher struct {
	mu      sync.Mutex
	payload []byte
	err     error
	calls   atomic.Int32
}

func (f *fakeFetcher) set(payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payload = []byte(payload)
}

func (f *fakeFetcher) FetchRates(context.Context) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(nil), f.payload...), nil
}

// memoryStore is a shared in-memory cache.Store that counts accesses.
type memoryStore struct {
	mu      sync.Mutex
	payload []byte
	reads   atomic.Int32
	writes  atomic.Int32
}

func (s *memoryStore) Read(context.Context) ([]byte, bool) {
	s.reads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return nil, false
	}
	return append([]byte(nil), s.payload...), true
}

func (s *memoryStore) Write(_ context.Context, payload []byte) error {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
	return nil
}

func (s *memoryStore) put(payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = []byte(payload)
}

func (s *memoryStore) resetCounters() {
	s.reads.Store(0)
	s.writes.Store(0)
}

var _ cache.Store = (*memoryStore)(nil)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestBank(fetcher provider.RatesFetcher, store cache.Store, opts Options) *Bank {
	return New(fetcher, store, currency.ISO(), zap.NewNop().Sugar(), opts)
}
