package bank

import (
	"context"
	"strings"
)

// UpdateRates replaces the table with a new generation. A straight update
// goes to the network first; a careful one prefers the cache. It returns the
// records that made it into the table; none means the previous generation
// was kept because no usable rates were available.
func (b *Bank) UpdateRates(ctx context.Context, straight bool) ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records, _, err := b.updateLocked(ctx, straight)
	return records, err
}

// updateLocked reports whether the table was replaced; an empty dataset
// leaves the previous generation in place.
func (b *Bank) updateLocked(ctx context.Context, straight bool) ([]Record, bool, error) {
	var (
		records []Record
		err     error
	)
	if straight {
		records, err = b.rawStraight(ctx, true)
	} else {
		records, err = b.rawCareful(ctx, true)
	}
	if err != nil {
		return nil, false, err
	}

	if emptyDataset(records) {
		b.log.Warnw("No rates available, keeping current table", "straight", straight, "source", b.source)
		return nil, false, nil
	}

	entries := make(map[Pair]float64, 2*len(records))
	applied := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Source != "" && !strings.EqualFold(rec.Source, b.source) {
			b.log.Warnw("Dropping rate quoted against another source", "record_source", rec.Source, "source", b.source, "target", rec.Target)
			continue
		}
		target := strings.ToUpper(rec.Target)
		if !b.catalog.Known(target) || !usableRate(rec.Rate) {
			continue
		}
		entries[Pair{From: b.source, To: target}] = rec.Rate
		entries[Pair{From: target, To: b.source}] = 1 / rec.Rate
		applied = append(applied, rec)
	}

	ts := recordsTimestamp(records)
	b.table.Reset(entries, ts)

	b.log.Infow("Rates updated",
		"straight", straight,
		"source", b.source,
		"records", len(records),
		"applied", len(applied),
		"timestamp", ts)
	return applied, true, nil
}

// rawCareful reads the cached payload and, if rescueStraight is set, falls
// back to the network when the cache is absent or unparseable.
func (b *Bank) rawCareful(ctx context.Context, rescueStraight bool) ([]Record, error) {
	if raw, ok := b.store.Read(ctx); ok {
		records, err := parseRecords(raw)
		if err == nil {
			return records, nil
		}
		b.log.Warnw("Cached rates are unreadable", "error", err)
	}
	if rescueStraight {
		return b.rawStraight(ctx, false)
	}
	return nil, nil
}

// rawStraight fetches the payload, caches it once it parsed into a
// non-empty dataset and, if rescueCareful is set, falls back to the cache
// when it cannot be parsed.
func (b *Bank) rawStraight(ctx context.Context, rescueCareful bool) ([]Record, error) {
	raw, err := b.fetcher.FetchRates(ctx)
	if err != nil {
		return nil, err
	}

	records, err := parseRecords(raw)
	if err == nil {
		if validDataset(raw) && !emptyDataset(records) {
			if err := b.store.Write(ctx, raw); err != nil {
				return nil, err
			}
		}
		return records, nil
	}
	b.log.Warnw("Fetched rates are unreadable", "error", err)
	if rescueCareful {
		return b.rawCareful(ctx, false)
	}
	return nil, nil
}
