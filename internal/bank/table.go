package bank

import (
	"sort"
	"sync"
	"time"
)

// Pair is a directional currency pair key.
type Pair struct {
	From string
	To   string
}

// RatePair is one table entry.
type RatePair struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// RateTable maps currency pairs to rates for one refresh generation.
// Reset swaps the whole generation; only derived rates are added in between.
type RateTable struct {
	mu        sync.RWMutex
	rates     map[Pair]float64
	timestamp time.Time
	loaded    bool
}

// NewRateTable creates an empty, never loaded table.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[Pair]float64)}
}

// Get returns the rate stored for from→to.
func (t *RateTable) Get(from, to string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rate, ok := t.rates[Pair{From: from, To: to}]
	return rate, ok
}

// Set stores rate for from→to, replacing any existing entry.
func (t *RateTable) Set(from, to string, rate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[Pair{From: from, To: to}] = rate
}

// AddIfAbsent stores rate for from→to unless the pair is already present and
// returns the rate now in the table.
func (t *RateTable) AddIfAbsent(from, to string, rate float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := Pair{From: from, To: to}
	if existing, ok := t.rates[key]; ok {
		return existing
	}
	t.rates[key] = rate
	return rate
}

// Reset replaces every entry and the generation timestamp at once.
func (t *RateTable) Reset(rates map[Pair]float64, timestamp time.Time) {
	if rates == nil {
		rates = make(map[Pair]float64)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates = rates
	t.timestamp = timestamp
	t.loaded = true
}

// Timestamp returns the timestamp of the current generation and whether the
// table was ever loaded.
func (t *RateTable) Timestamp() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.timestamp, t.loaded
}

// Len returns the number of entries.
func (t *RateTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rates)
}

// Snapshot returns a copy of all entries ordered by pair.
func (t *RateTable) Snapshot() []RatePair {
	t.mu.RLock()
	out := make([]RatePair, 0, len(t.rates))
	for k, v := range t.rates {
		out = append(out, RatePair{From: k.From, To: k.To, Rate: v})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
