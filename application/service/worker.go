package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/helixml/compset/domain/task"
)

// Handler executes a specific task operation.
type Handler interface {
	Execute(ctx context.Context, payload map[string]any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, payload map[string]any) error

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, payload map[string]any) error {
	return f(ctx, payload)
}

// Registry manages task handlers for different operations.
type Registry struct {
	handlers map[task.Operation]Handler
	mu       sync.RWMutex
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[task.Operation]Handler),
	}
}

// Register registers a handler for an operation.
func (r *Registry) Register(operation task.Operation, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[operation] = handler
}

// Handler returns the handler for an operation.
func (r *Registry) Handler(operation task.Operation) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[operation]
	return handler, ok
}

// HasHandler reports whether a handler is registered for the operation.
func (r *Registry) HasHandler(operation task.Operation) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[operation]
	return ok
}

// Worker processes tasks from the queue one at a time. Batch jobs are
// retried with backoff and bounded by a job timeout; per-property tasks
// run once.
type Worker struct {
	store      task.TaskStore
	registry   *Registry
	logger     *slog.Logger
	pollPeriod time.Duration
	retry      RetryPolicy
	jobTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWorker creates a new queue worker.
func NewWorker(store task.TaskStore, registry *Registry, logger *slog.Logger) *Worker {
	return &Worker{
		store:      store,
		registry:   registry,
		logger:     logger,
		pollPeriod: time.Second,
		retry:      NoRetry(),
	}
}

// WithPollPeriod sets the poll period for checking new tasks.
func (w *Worker) WithPollPeriod(d time.Duration) *Worker {
	if d > 0 {
		w.pollPeriod = d
	}
	return w
}

// WithRetry sets the backoff policy applied to batch jobs.
func (w *Worker) WithRetry(p RetryPolicy) *Worker {
	w.retry = p
	return w
}

// WithJobTimeout bounds each batch job run, retries included.
// Zero means no timeout.
func (w *Worker) WithJobTimeout(d time.Duration) *Worker {
	w.jobTimeout = d
	return w
}

// Start begins processing tasks from the queue.
// The worker runs in a goroutine and can be stopped with Stop().
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	w.logger.Info("queue worker started", slog.Duration("poll_period", w.pollPeriod))
}

// Stop gracefully shuts down the worker.
// It waits for the current task to complete before returning.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	w.logger.Info("queue worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Error("error processing task",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// drain processes tasks until the queue is empty.
func (w *Worker) drain(ctx context.Context) error {
	for ctx.Err() == nil {
		found, err := w.ProcessOne(ctx)
		if err != nil || !found {
			return err
		}
	}
	return nil
}

func (w *Worker) processTask(ctx context.Context, t task.Task) {
	start := time.Now()
	attrs := []any{
		slog.Int64("task_id", t.ID()),
		slog.String("operation", t.Operation().String()),
	}
	if id, ok := t.PropertyID(); ok {
		attrs = append(attrs, slog.Int64("property_id", id))
	}
	if date := t.Date(); date != "" {
		attrs = append(attrs, slog.String("date", date))
	}

	h, ok := w.registry.Handler(t.Operation())
	if !ok {
		w.logger.Error("no handler for operation", attrs...)
		return
	}

	w.logger.Info("processing task", attrs...)

	var err error
	if t.Operation().IsJob() {
		err = w.runJob(ctx, h, t)
	} else {
		err = w.executeWithRecovery(ctx, h, t)
	}
	if err != nil {
		w.logger.Error("task execution failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}

	w.logger.Info("task completed", append(attrs, slog.Duration("duration", time.Since(start)))...)
}

func (w *Worker) runJob(ctx context.Context, h Handler, t task.Task) error {
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}
	return Retry(ctx, w.retry, w.logger, func(ctx context.Context) error {
		return w.executeWithRecovery(ctx, h, t)
	})
}

func (w *Worker) executeWithRecovery(ctx context.Context, h Handler, t task.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Execute(ctx, t.Payload())
}

// ProcessOne dequeues and runs a single task synchronously. Handler
// failures are logged rather than returned; the task is consumed either way.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	t, found, err := w.store.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	w.processTask(ctx, t)
	return true, nil
}
