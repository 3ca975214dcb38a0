// Package bank keeps an in-memory exchange rate table fresh against a remote
// pricing service and a shared cache, and resolves arbitrary currency pairs
// through direct, inverse and base-currency rates.
package bank

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ratebank/internal/cache"
	"ratebank/internal/currency"
	"ratebank/internal/provider"
)

// DefaultSource is the base currency used when none, or an unknown one, is configured.
const DefaultSource = "USD"

// ErrRateUnavailable is returned when no rate can be derived for a pair.
// It is an expected outcome for unsupported currencies, not a failure.
var ErrRateUnavailable = errors.New("rate unavailable")

// Options configures a Bank.
type Options struct {
	Source string
	TTL    time.Duration // Zero means rates never time-expire.
	Now    func() time.Time
}

// Bank owns one rate table and its refresh lifecycle.
type Bank struct {
	fetcher provider.RatesFetcher
	store   cache.Store
	catalog currency.Catalog
	log     *zap.SugaredLogger

	source string
	ttl    time.Duration
	now    func() time.Time

	// mu serializes table refreshes against resolution.
	mu      sync.RWMutex
	table   *RateTable
	resolve lookupFunc
}

// New creates a Bank. A nil store disables caching.
func New(fetcher provider.RatesFetcher, store cache.Store, catalog currency.Catalog, logger *zap.SugaredLogger, opts Options) *Bank {
	if store == nil {
		store = cache.None{}
	}
	if catalog == nil {
		catalog = currency.ISO()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	source, err := SourceCurrency(catalog, opts.Source)
	if err != nil && strings.TrimSpace(opts.Source) != "" {
		logger.Warnw("Unknown source currency, using default", "source", opts.Source, "default", DefaultSource, "error", err)
	}

	table := NewRateTable()
	return &Bank{
		fetcher: fetcher,
		store:   store,
		catalog: catalog,
		log:     logger,
		source:  source,
		ttl:     opts.TTL,
		now:     opts.Now,
		table:   table,
		resolve: newResolver(table, source),
	}
}

// SourceCurrency normalizes a configured source currency against the
// catalog. An empty, malformed or unknown code yields DefaultSource together
// with the reason, so the fetcher and the bank agree on one base currency.
func SourceCurrency(catalog currency.Catalog, code string) (string, error) {
	source, err := currency.Normalize(catalog, code)
	if err != nil {
		return DefaultSource, err
	}
	return source, nil
}

// Source returns the base currency all fetched rates are quoted against.
func (b *Bank) Source() string { return b.source }

// TTL returns the configured time to live of a rate generation.
func (b *Bank) TTL() time.Duration { return b.ttl }

// Rate returns the exchange rate from→to, refreshing the table first when it
// is expired or stale. Same-currency pairs always resolve to 1.
func (b *Bank) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to, err := normalizePair(from, to)
	if err != nil {
		return 0, err
	}
	if from == to {
		return 1, nil
	}

	if _, err := b.ExpireRates(ctx); err != nil {
		return 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	rate, ok := b.resolve(from, to)
	if !ok {
		return 0, ErrRateUnavailable
	}
	return rate, nil
}

// AddRate stores a rate in the current generation, replacing any existing entry.
// The next refresh discards it.
func (b *Bank) AddRate(from, to string, rate float64) error {
	from, to, err := normalizePair(from, to)
	if err != nil {
		return err
	}
	if !usableRate(rate) {
		return errors.New("rate must be a positive finite number")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.table.Set(from, to, rate)
	return nil
}

// Rates returns a snapshot of the current table, derived rates included.
func (b *Bank) Rates() []RatePair {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Snapshot()
}

// MemoryTimestamp returns the timestamp of the rates held in memory and
// whether a refresh ever succeeded.
func (b *Bank) MemoryTimestamp() (time.Time, bool) {
	return b.table.Timestamp()
}

func normalizePair(from, to string) (string, string, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if !currency.IsValidCode(from) || !currency.IsValidCode(to) {
		return "", "", currency.ErrInvalidCode
	}
	return strings.ToUpper(from), strings.ToUpper(to), nil
}
