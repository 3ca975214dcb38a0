//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ratebank/internal/cache"
	"ratebank/internal/testkit"
	"ratebank/internal/worker"
)

func TestWorker_RefreshTaskUpdatesBank(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	// Keep the task queue apart from the cache database.
	redisOpt := asynq.RedisClientOpt{Addr: testkit.Global().Redis().Addr(), DB: 1}
	flush := testkit.Global().Redis().Client(1)
	t.Cleanup(func() { _ = flush.Close() })
	require.NoError(t, flush.FlushDB(ctx).Err())

	upstream := newPricingServer(t, jan1Payload)
	store := cache.NewRedisStore(testRDB, "ratebank:rates")
	b := newBank(upstream, store)

	mux := asynq.NewServeMux()
	mux.HandleFunc(worker.TaskTypeRefreshRates, worker.NewRefreshHandler(b, zap.NewNop().Sugar()))
	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 1, LogLevel: asynq.ErrorLevel})
	require.NoError(t, srv.Start(mux))
	t.Cleanup(srv.Shutdown)

	client := asynq.NewClient(redisOpt)
	t.Cleanup(func() { _ = client.Close() })
	enq := worker.NewAsynqEnqueuer(client, worker.TaskOptions{MaxRetry: 1, Timeout: 10 * time.Second})

	require.NoError(t, enq.EnqueueRefresh(ctx, true))
	require.NoError(t, enq.EnqueueRefresh(ctx, true), "a pending duplicate is not an error")

	require.Eventually(t, func() bool {
		_, loaded := b.MemoryTimestamp()
		return loaded
	}, 15*time.Second, 100*time.Millisecond)

	cached, ok := store.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, jan1Payload, string(cached))
	assert.GreaterOrEqual(t, upstream.calls.Load(), int32(1))
}
