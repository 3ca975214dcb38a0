package bank

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ratebank/internal/provider"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestExpireRates_ExpiredGoesToNetworkOnce(t *testing.T) {
	store := &memoryStore{}
	store.put(usdPayload)
	clk := &clock{now: jan1.Add(30 * time.Minute)}
	fetcher := new(MockFetcher)
	b := newTestBank(fetcher, store, Options{Source: "USD", TTL: time.Hour, Now: clk.Now})
	ctx := context.Background()

	// First load comes from the cache.
	refreshed, err := b.ExpireRates(ctx)
	require.NoError(t, err)
	assert.True(t, refreshed)
	fetcher.AssertNotCalled(t, "FetchRates", mock.Anything)
	assert.Equal(t, Fresh, b.State(ctx))

	clk.set(jan1.Add(2 * time.Hour))
	assert.Equal(t, Expired, b.State(ctx))

	store.resetCounters()
	fetcher.On("FetchRates", mock.Anything).Return([]byte(laterPayload), nil).Once()

	refreshed, err = b.ExpireRates(ctx)
	require.NoError(t, err)
	assert.True(t, refreshed)
	fetcher.AssertNumberOfCalls(t, "FetchRates", 1)
	assert.Zero(t, store.reads.Load(), "an expired refresh must not reload from the cache")
	assert.Equal(t, int32(1), store.writes.Load(), "network result is written through")

	rate, err := b.Rate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.9, rate)
	fetcher.AssertExpectations(t)
}

func TestExpireRates_StaleReloadsFromCacheOnly(t *testing.T) {
	shared := &memoryStore{}
	shared.put(usdPayload)
	ctx := context.Background()

	fetcherA := &fakeFetcher{}
	a := newTestBank(fetcherA, shared, Options{Source: "USD"})

	rate, err := a.Rate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.85, rate)

	// Another process refreshes the shared cache.
	fetcherB := &fakeFetcher{}
	fetcherB.set(laterPayload)
	other := newTestBank(fetcherB, shared, Options{Source: "USD"})
	_, err = other.UpdateRates(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, Stale, a.State(ctx))
	refreshed, err := a.ExpireRates(ctx)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Zero(t, fetcherA.calls.Load(), "a stale refresh must not call the network")

	rate, err = a.Rate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.9, rate)

	refreshed, err = a.ExpireRates(ctx)
	require.NoError(t, err)
	assert.False(t, refreshed)
}

func TestExpireRates_FreshIsUnchanged(t *testing.T) {
	store := &memoryStore{}
	f := &fakeFetcher{}
	f.set(usdPayload)
	b := newTestBank(f, store, Options{Source: "USD", TTL: time.Hour, Now: func() time.Time { return jan1 }})
	ctx := context.Background()

	refreshed, err := b.ExpireRates(ctx)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, int32(1), f.calls.Load())

	for i := 0; i < 3; i++ {
		refreshed, err = b.ExpireRates(ctx)
		require.NoError(t, err)
		assert.False(t, refreshed)
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestExpireRates_EmptyDatasetIsNotARefresh(t *testing.T) {
	clk := &clock{now: jan1}
	f := &fakeFetcher{}
	f.set(usdPayload)
	b := newTestBank(f, nil, Options{Source: "USD", TTL: time.Hour, Now: clk.Now})
	ctx := context.Background()

	_, err := b.UpdateRates(ctx, true)
	require.NoError(t, err)

	clk.set(jan1.Add(2 * time.Hour))
	f.set(string(provider.EmptyDataset))

	refreshed, err := b.ExpireRates(ctx)
	require.NoError(t, err)
	assert.False(t, refreshed, "the previous generation was kept")
	assert.Equal(t, int32(2), f.calls.Load())

	rate, ok := b.table.Get("USD", "EUR")
	require.True(t, ok)
	assert.Equal(t, 0.85, rate)
}

func TestExpired(t *testing.T) {
	f := &fakeFetcher{}
	f.set(usdPayload)
	clk := &clock{now: jan1}
	ctx := context.Background()

	t.Run("ttl zero never expires", func(t *testing.T) {
		b := newTestBank(f, nil, Options{Source: "USD", Now: clk.Now})
		_, err := b.UpdateRates(ctx, true)
		require.NoError(t, err)

		clk.set(jan1.AddDate(10, 0, 0))
		assert.False(t, b.Expired())
		assert.True(t, b.Expiration().IsZero())
	})

	t.Run("never loaded is not expired", func(t *testing.T) {
		b := newTestBank(f, nil, Options{Source: "USD", TTL: time.Second, Now: clk.Now})
		assert.False(t, b.Expired())
		assert.Equal(t, Stale, b.State(ctx))
	})

	t.Run("expires after ttl", func(t *testing.T) {
		b := newTestBank(f, nil, Options{Source: "USD", TTL: 24 * time.Hour, Now: clk.Now})
		_, err := b.UpdateRates(ctx, true)
		require.NoError(t, err)
		assert.True(t, b.Expiration().Equal(jan1.Add(24*time.Hour)))

		clk.set(jan1.Add(23 * time.Hour))
		assert.False(t, b.Expired())
		clk.set(jan1.Add(25 * time.Hour))
		assert.True(t, b.Expired())
	})
}

func TestStale(t *testing.T) {
	ctx := context.Background()

	t.Run("absent cache is not stale once loaded", func(t *testing.T) {
		f := &fakeFetcher{}
		f.set(usdPayload)
		b := newTestBank(f, nil, Options{Source: "USD"})
		assert.True(t, b.Stale(ctx))

		_, err := b.UpdateRates(ctx, true)
		require.NoError(t, err)
		assert.False(t, b.Stale(ctx))
	})

	t.Run("unparseable cache is not stale", func(t *testing.T) {
		store := &memoryStore{}
		f := &fakeFetcher{}
		f.set(usdPayload)
		b := newTestBank(f, store, Options{Source: "USD"})
		_, err := b.UpdateRates(ctx, true)
		require.NoError(t, err)

		store.put("{broken")
		assert.False(t, b.Stale(ctx))
	})

	t.Run("cache timestamp compared to memory timestamp", func(t *testing.T) {
		store := &memoryStore{}
		store.put(usdPayload)
		b := newTestBank(&fakeFetcher{}, store, Options{Source: "USD"})
		_, err := b.UpdateRates(ctx, false)
		require.NoError(t, err)
		assert.False(t, b.Stale(ctx))

		ts, ok := b.RatesTimestamp(ctx)
		require.True(t, ok)
		assert.True(t, ts.Equal(jan1))

		store.put(laterPayload)
		assert.True(t, b.Stale(ctx))
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "stale", Stale.String())
}
