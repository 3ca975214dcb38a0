// Package worker refreshes the rate table in the background through asynq.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"ratebank/internal/bank"
)

// TaskTypeRefreshRates is the asynq task type for a rate table refresh.
const TaskTypeRefreshRates = "rates:refresh"

// RefreshPayload is the task payload. Straight selects network-first.
type RefreshPayload struct {
	Straight bool `json:"straight"`
}

// Refresher reloads the rate table.
type Refresher interface {
	UpdateRates(ctx context.Context, straight bool) ([]bank.Record, error)
}

// NewRefreshHandler returns a function to handle rate refresh tasks.
func NewRefreshHandler(r Refresher, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}

		records, err := r.UpdateRates(ctx, payload.Straight)
		if err != nil {
			logger.Errorw("Rate refresh failed", "straight", payload.Straight, "error", err)
			return err
		}

		logger.Infow("Rate refresh completed", "straight", payload.Straight, "records", len(records))
		return nil
	}
}

// TaskOptions are the retry and timeout settings applied to refresh tasks.
type TaskOptions struct {
	MaxRetry int
	Timeout  time.Duration
}

// NewRefreshTask builds a refresh task. Unique stops a second refresh from
// being queued while one is pending.
func NewRefreshTask(straight bool, opts TaskOptions) (*asynq.Task, error) {
	data, err := json.Marshal(RefreshPayload{Straight: straight})
	if err != nil {
		return nil, err
	}

	taskOpts := []asynq.Option{
		asynq.MaxRetry(opts.MaxRetry),
		asynq.Unique(uniqueWindow(opts.Timeout)),
	}
	if opts.Timeout > 0 {
		taskOpts = append(taskOpts, asynq.Timeout(opts.Timeout))
	}
	return asynq.NewTask(TaskTypeRefreshRates, data, taskOpts...), nil
}

func uniqueWindow(timeout time.Duration) time.Duration {
	if timeout < time.Second {
		return time.Minute
	}
	return timeout
}

// AsynqEnqueuer enqueues refresh tasks with fixed retry and timeout settings.
type AsynqEnqueuer struct {
	client *asynq.Client
	opts   TaskOptions
}

// NewAsynqEnqueuer creates an AsynqEnqueuer.
func NewAsynqEnqueuer(client *asynq.Client, opts TaskOptions) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client, opts: opts}
}

// EnqueueRefresh queues one refresh. A refresh that is already pending is
// not an error.
func (e *AsynqEnqueuer) EnqueueRefresh(ctx context.Context, straight bool) error {
	task, err := NewRefreshTask(straight, e.opts)
	if err != nil {
		return err
	}

	_, err = e.client.EnqueueContext(ctx, task)
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return err
	}
	return nil
}

// RegisterSchedule adds the periodic straight refresh to the scheduler.
func RegisterSchedule(s *asynq.Scheduler, cronspec string, opts TaskOptions) (string, error) {
	task, err := NewRefreshTask(true, opts)
	if err != nil {
		return "", err
	}
	id, err := s.Register(cronspec, task)
	if err != nil {
		return "", fmt.Errorf("register refresh schedule %q: %w", cronspec, err)
	}
	return id, nil
}
