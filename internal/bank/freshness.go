package bank

import (
	"context"
	"time"
)

// State is the freshness of the in-memory table.
type State int

// Freshness states.
const (
	Fresh State = iota
	Expired
	Stale
)

func (s State) String() string {
	switch s {
	case Expired:
		return "expired"
	case Stale:
		return "stale"
	default:
		return "fresh"
	}
}

// ExpireRates refreshes the table when needed: from the network when the
// rates aged out, from the cache when another writer already stored a
// different generation. It reports whether the table was replaced.
func (b *Bank) ExpireRates(ctx context.Context) (bool, error) {
	if b.State(ctx) == Fresh {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	switch state := b.State(ctx); state {
	case Expired:
		_, replaced, err := b.updateLocked(ctx, true)
		return replaced, err
	case Stale:
		_, replaced, err := b.updateLocked(ctx, false)
		return replaced, err
	default:
		return false, nil
	}
}

// State evaluates expiry first, then staleness.
func (b *Bank) State(ctx context.Context) State {
	if b.Expired() {
		return Expired
	}
	if b.Stale(ctx) {
		return Stale
	}
	return Fresh
}

// Expired reports whether the loaded generation outlived the TTL.
func (b *Bank) Expired() bool {
	if b.ttl <= 0 {
		return false
	}
	ts, loaded := b.table.Timestamp()
	return loaded && b.now().After(ts.Add(b.ttl))
}

// Stale reports whether the cache holds a generation other than the one in
// memory, or nothing was ever loaded. Only the cache is consulted.
func (b *Bank) Stale(ctx context.Context) bool {
	memTS, loaded := b.table.Timestamp()
	if !loaded {
		return true
	}
	cacheTS, ok := b.RatesTimestamp(ctx)
	return ok && !cacheTS.Equal(memTS)
}

// RatesTimestamp returns the timestamp of the cached generation, or false
// when the cache is absent or unparseable.
func (b *Bank) RatesTimestamp(ctx context.Context) (time.Time, bool) {
	raw, ok := b.store.Read(ctx)
	if !ok {
		return time.Time{}, false
	}
	return payloadTimestamp(raw)
}

// Expiration returns when the in-memory generation expires; zero when the
// TTL is disabled or nothing was loaded.
func (b *Bank) Expiration() time.Time {
	ts, loaded := b.table.Timestamp()
	if b.ttl <= 0 || !loaded {
		return time.Time{}
	}
	return ts.Add(b.ttl)
}
