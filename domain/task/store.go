package task

import (
	"context"

	"github.com/helixml/compset/domain/query"
)

// TaskStore persists queued tasks.
type TaskStore interface {
	Get(ctx context.Context, id int64) (Task, error)
	// Save inserts t, or raises the priority of the task sharing its dedup key.
	Save(ctx context.Context, t Task) (Task, error)
	Delete(ctx context.Context, t Task) error
	FindPending(ctx context.Context, options ...query.Option) ([]Task, error)
	CountPending(ctx context.Context, options ...query.Option) (int64, error)
	// Dequeue removes and returns the highest priority, oldest task.
	Dequeue(ctx context.Context) (Task, bool, error)
}

// StatusStore persists the latest run status of each job.
type StatusStore interface {
	Save(ctx context.Context, s Status) error
	Get(ctx context.Context, operation Operation) (Status, error)
	FindAll(ctx context.Context) ([]Status, error)
}

// WithOperation filters tasks by operation.
func WithOperation(op Operation) query.Option {
	return query.WithCondition("type", op.String())
}
