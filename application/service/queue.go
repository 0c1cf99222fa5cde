package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/query"
	"github.com/helixml/compset/domain/task"
)

// TaskListParams configures task listing.
type TaskListParams struct {
	Operation *task.Operation
	Limit     int
	Offset    int
}

// Queue provides the main interface for enqueuing and managing tasks.
type Queue struct {
	store  task.TaskStore
	logger *slog.Logger
}

// NewQueue creates a new queue service.
func NewQueue(store task.TaskStore, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
	}
}

// Enqueue adds a task to the queue.
// If a task with the same dedup_key exists, it updates the priority instead.
func (s *Queue) Enqueue(ctx context.Context, t task.Task) (task.Task, error) {
	saved, err := s.store.Save(ctx, t)
	if err != nil {
		return task.Task{}, err
	}

	s.logger.Debug("task enqueued",
		slog.String("dedup_key", t.DedupKey()),
		slog.String("operation", t.Operation().String()),
		slog.Int("priority", t.Priority()),
	)
	return saved, nil
}

// EnqueueOperations queues multiple operations with decreasing priority.
// The first operation in the list has the highest priority, ensuring
// operations are processed in order.
func (s *Queue) EnqueueOperations(
	ctx context.Context,
	operations []task.Operation,
	basePriority task.Priority,
	payload map[string]any,
) ([]task.Task, error) {
	priorityOffset := len(operations) * 10
	queued := make([]task.Task, 0, len(operations))
	for _, op := range operations {
		t, err := s.Enqueue(ctx, task.NewTask(op, int(basePriority)+priorityOffset, payload))
		if err != nil {
			return queued, err
		}
		queued = append(queued, t)
		priorityOffset -= 10
	}
	return queued, nil
}

// EnqueueJob queues one batch job for date at the given priority.
func (s *Queue) EnqueueJob(ctx context.Context, op task.Operation, date time.Time, priority task.Priority) (task.Task, error) {
	return s.Enqueue(ctx, task.NewTask(op, int(priority), JobPayload(date)))
}

// EnqueueRecompute queues a graph rebuild followed by an index computation
// for one property.
func (s *Queue) EnqueueRecompute(ctx context.Context, propertyID int64, date time.Time) ([]task.Task, error) {
	if propertyID <= 0 {
		return nil, ErrInvalidPropertyID
	}
	payload := JobPayload(date)
	payload[task.KeyPropertyID] = propertyID
	return s.EnqueueOperations(ctx, task.PropertyRecompute(), task.PriorityUserInitiated, payload)
}

// JobPayload is the payload of a task that runs for a calendar date.
func JobPayload(date time.Time) map[string]any {
	return map[string]any{task.KeyDate: calendar.Format(date)}
}

// List returns tasks matching the given params.
// Tasks are sorted by priority (highest first) then by created_at (oldest first).
func (s *Queue) List(ctx context.Context, params *TaskListParams) ([]task.Task, error) {
	var options []query.Option

	if params != nil && params.Operation != nil {
		options = append(options, task.WithOperation(*params.Operation))
	}
	if params != nil && params.Limit > 0 {
		options = append(options, query.WithPagination(params.Limit, params.Offset)...)
	}

	return s.store.FindPending(ctx, options...)
}

// Count returns the number of pending tasks, filtered by operation when
// params names one. Pagination fields are ignored.
func (s *Queue) Count(ctx context.Context, params *TaskListParams) (int64, error) {
	var options []query.Option
	if params != nil && params.Operation != nil {
		options = append(options, task.WithOperation(*params.Operation))
	}
	return s.store.CountPending(ctx, options...)
}

// Get retrieves a task by ID.
func (s *Queue) Get(ctx context.Context, id int64) (task.Task, error) {
	return s.store.Get(ctx, id)
}
