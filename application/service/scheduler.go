package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/internal/config"
)

// Scheduler enqueues the recurring batch jobs on a timer. Each tick queues
// the index job ahead of the graph job so the worker runs them in that order.
type Scheduler struct {
	queue    *Queue
	logger   *slog.Logger
	interval time.Duration
	enabled  bool
	clock    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new Scheduler from config and dependencies.
func NewScheduler(cfg config.SchedulerConfig, queue *Queue, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queue:    queue,
		logger:   logger,
		interval: cfg.Interval(),
		enabled:  cfg.Enabled(),
		clock:    time.Now,
	}
}

// WithClock overrides the time source that dates the queued jobs.
func (p *Scheduler) WithClock(clock func() time.Time) *Scheduler {
	p.clock = clock
	return p
}

// Start begins scheduling in a background goroutine.
// If disabled, this is a no-op.
func (p *Scheduler) Start(ctx context.Context) {
	if !p.enabled {
		p.logger.Info("job scheduler disabled")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Go(func() {
		p.run(ctx)
	})

	p.logger.Info("job scheduler started", slog.Duration("interval", p.interval))
}

// Stop cancels the background goroutine and waits for it to finish.
func (p *Scheduler) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	p.logger.Info("job scheduler stopped")
}

func (p *Scheduler) run(ctx context.Context) {
	// Queue immediately on startup; both jobs are idempotent.
	p.Tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick queues today's index and graph jobs. Re-queuing a job that is still
// pending only refreshes its priority.
func (p *Scheduler) Tick(ctx context.Context) {
	payload := JobPayload(p.clock())
	if _, err := p.queue.EnqueueOperations(ctx, task.ScheduledJobs(), task.PriorityBackground, payload); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("scheduler failed to enqueue jobs",
			slog.String("error", err.Error()),
		)
		return
	}
	p.logger.Debug("scheduled jobs enqueued", slog.Any("date", payload[task.KeyDate]))
}
