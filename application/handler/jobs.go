package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/compset/application/service"
	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/domain/query"
	"github.com/helixml/compset/domain/task"
)

// statusRecorder saves job statuses, logging rather than failing on errors.
type statusRecorder struct {
	store  task.StatusStore
	logger *slog.Logger
}

func (r statusRecorder) save(ctx context.Context, st task.Status) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, st); err != nil {
		r.logger.Warn("failed to save job status",
			slog.String("operation", st.Operation().String()),
			slog.String("error", err.Error()),
		)
	}
}

// IndexJob computes today's index for every property that has at least
// one competitor relationship. A failing property is logged and skipped.
type IndexJob struct {
	properties property.Store
	calculator *service.IndexCalculator
	status     statusRecorder
	clock      func() time.Time
	logger     *slog.Logger
}

// NewIndexJob creates a new IndexJob handler.
func NewIndexJob(
	properties property.Store,
	calculator *service.IndexCalculator,
	statuses task.StatusStore,
	logger *slog.Logger,
) *IndexJob {
	return &IndexJob{
		properties: properties,
		calculator: calculator,
		status:     statusRecorder{store: statuses, logger: logger},
		clock:      time.Now,
		logger:     logger,
	}
}

// WithClock overrides the time source.
func (h *IndexJob) WithClock(clock func() time.Time) *IndexJob {
	h.clock = clock
	return h
}

// Execute processes the index job task.
func (h *IndexJob) Execute(ctx context.Context, payload map[string]any) error {
	date, err := ExtractDate(payload, task.KeyDate, h.clock)
	if err != nil {
		return err
	}
	_, err = h.Run(ctx, date)
	return err
}

// Run computes the index of every eligible property for date, one at a time.
// Only a failure to list the properties fails the run.
func (h *IndexJob) Run(ctx context.Context, date time.Time) (task.Status, error) {
	props, err := h.properties.Find(ctx, property.WithRelationships(), query.WithOrderAsc("id"))
	if err != nil {
		st := task.StartStatus(task.OperationRunIndexJob, 0, h.clock()).Fail(err.Error(), h.clock())
		h.status.save(ctx, st)
		return st, fmt.Errorf("list properties with relationships: %w", err)
	}

	st := task.StartStatus(task.OperationRunIndexJob, len(props), h.clock())
	h.status.save(ctx, st)

	for _, p := range props {
		if err := ctx.Err(); err != nil {
			st = st.Fail(err.Error(), h.clock())
			h.status.save(ctx, st)
			return st, err
		}
		_, err := h.calculator.Compute(ctx, service.ComputeRequest{PropertyID: p.ID(), Date: date})
		if err != nil {
			h.logger.Error("index computation failed",
				slog.Int64("property_id", p.ID()),
				slog.String("error", err.Error()),
			)
		}
		st = st.Record(err)
	}

	st = st.Complete(h.clock())
	h.status.save(ctx, st)
	h.logger.Info("index job finished",
		slog.String("date", calendar.Format(date)),
		slog.Int("properties", st.Total()),
		slog.Int("succeeded", st.Succeeded()),
		slog.Int("failed", st.Failed()),
	)
	return st, nil
}

// GraphJob builds graphs for located properties that have no relationships
// yet, at most batchSize per run. Every attempt is stamped on the property
// and each batch takes the least recently attempted first, so properties
// with no hotels in range cannot starve the rest.
type GraphJob struct {
	properties property.Store
	builder    *service.GraphBuilder
	options    graph.BuildOptions
	batchSize  int
	status     statusRecorder
	clock      func() time.Time
	logger     *slog.Logger
}

// NewGraphJob creates a new GraphJob handler.
func NewGraphJob(
	properties property.Store,
	builder *service.GraphBuilder,
	options graph.BuildOptions,
	batchSize int,
	statuses task.StatusStore,
	logger *slog.Logger,
) *GraphJob {
	return &GraphJob{
		properties: properties,
		builder:    builder,
		options:    options,
		batchSize:  batchSize,
		status:     statusRecorder{store: statuses, logger: logger},
		clock:      time.Now,
		logger:     logger,
	}
}

// WithClock overrides the time source.
func (h *GraphJob) WithClock(clock func() time.Time) *GraphJob {
	h.clock = clock
	return h
}

// Execute processes the graph maintenance task.
func (h *GraphJob) Execute(ctx context.Context, _ map[string]any) error {
	_, err := h.Run(ctx)
	return err
}

// Run builds graphs for one batch of properties, one at a time.
func (h *GraphJob) Run(ctx context.Context) (task.Status, error) {
	opts := []query.Option{
		property.WithLocation(),
		property.WithoutRelationships(),
		property.LeastRecentlyAttempted(),
		query.WithOrderAsc("properties.id"),
	}
	if h.batchSize > 0 {
		opts = append(opts, query.WithLimit(h.batchSize))
	}

	props, err := h.properties.Find(ctx, opts...)
	if err != nil {
		st := task.StartStatus(task.OperationRunGraphJob, 0, h.clock()).Fail(err.Error(), h.clock())
		h.status.save(ctx, st)
		return st, fmt.Errorf("list properties without relationships: %w", err)
	}

	st := task.StartStatus(task.OperationRunGraphJob, len(props), h.clock())
	h.status.save(ctx, st)

	for _, p := range props {
		if err := ctx.Err(); err != nil {
			st = st.Fail(err.Error(), h.clock())
			h.status.save(ctx, st)
			return st, err
		}
		loc, _ := p.Location()
		_, err := h.builder.Build(ctx, p.ID(), loc, p.Attributes(), h.options)
		if err != nil {
			h.logger.Error("graph build failed",
				slog.Int64("property_id", p.ID()),
				slog.String("error", err.Error()),
			)
		}
		if markErr := h.properties.MarkGraphAttempt(ctx, p.ID(), h.clock()); markErr != nil {
			h.logger.Warn("record graph attempt failed",
				slog.Int64("property_id", p.ID()),
				slog.String("error", markErr.Error()),
			)
		}
		st = st.Record(err)
	}

	st = st.Complete(h.clock())
	h.status.save(ctx, st)
	h.logger.Info("graph job finished",
		slog.Int("properties", st.Total()),
		slog.Int("succeeded", st.Succeeded()),
		slog.Int("failed", st.Failed()),
	)
	return st, nil
}
