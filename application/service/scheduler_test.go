package service

import (
	"context"
	"testing"
	"time"

	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_TickQueuesIndexBeforeGraph(t *testing.T) {
	ctx := context.Background()
	queue, store := newTestQueue(t)
	scheduler := NewScheduler(config.NewSchedulerConfig(), queue, testLogger()).WithClock(fixedClock)

	scheduler.Tick(ctx)
	scheduler.Tick(ctx)

	count, err := queue.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	first, _, err := store.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.OperationRunIndexJob, first.Operation())
	assert.Equal(t, "2026-10-14", first.Payload()["date"])
	assert.Less(t, first.Priority(), int(task.PriorityNormal))
}

func TestScheduler_DisabledDoesNothing(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)
	scheduler := NewScheduler(config.NewSchedulerConfig().WithEnabled(false), queue, testLogger())

	scheduler.Start(ctx)
	scheduler.Stop()

	count, err := queue.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestScheduler_StartQueuesImmediately(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)
	cfg := config.NewSchedulerConfig().WithEnabled(true).WithInterval(time.Hour)
	scheduler := NewScheduler(cfg, queue, testLogger())

	scheduler.Start(ctx)
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		count, err := queue.Count(ctx, nil)
		return err == nil && count == 2
	}, 2*time.Second, 10*time.Millisecond)
}
