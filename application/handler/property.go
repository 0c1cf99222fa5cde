package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/compset/application/service"
	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/index"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/domain/task"
)

// ErrMissingLocation indicates a property without coordinates was asked
// for a graph.
var ErrMissingLocation = fmt.Errorf("%w: property has no location", errs.ErrValidation)

// BuildGraph rebuilds one property's graph from its stored location and
// attributes.
type BuildGraph struct {
	properties property.Store
	builder    *service.GraphBuilder
	options    graph.BuildOptions
	logger     *slog.Logger
}

// NewBuildGraph creates a new BuildGraph handler.
func NewBuildGraph(properties property.Store, builder *service.GraphBuilder, options graph.BuildOptions, logger *slog.Logger) *BuildGraph {
	return &BuildGraph{properties: properties, builder: builder, options: options, logger: logger}
}

// Execute processes the build graph task.
func (h *BuildGraph) Execute(ctx context.Context, payload map[string]any) error {
	propertyID, err := ExtractInt64(payload, task.KeyPropertyID)
	if err != nil {
		return err
	}
	p, err := h.properties.Get(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("get property: %w", err)
	}
	loc, ok := p.Location()
	if !ok {
		return ErrMissingLocation
	}
	_, err = h.builder.Build(ctx, propertyID, loc, p.Attributes(), h.options)
	return err
}

// ComputeIndex computes one property's index for the payload date.
// A property left without competitors is skipped, not failed.
type ComputeIndex struct {
	calculator *service.IndexCalculator
	clock      func() time.Time
	logger     *slog.Logger
}

// NewComputeIndex creates a new ComputeIndex handler.
func NewComputeIndex(calculator *service.IndexCalculator, logger *slog.Logger) *ComputeIndex {
	return &ComputeIndex{calculator: calculator, clock: time.Now, logger: logger}
}

// Execute processes the compute index task.
func (h *ComputeIndex) Execute(ctx context.Context, payload map[string]any) error {
	propertyID, err := ExtractInt64(payload, task.KeyPropertyID)
	if err != nil {
		return err
	}
	date, err := ExtractDate(payload, task.KeyDate, h.clock)
	if err != nil {
		return err
	}

	_, err = h.calculator.Compute(ctx, service.ComputeRequest{PropertyID: propertyID, Date: date})
	if errors.Is(err, index.ErrNoCompetitors) {
		h.logger.Info("skipping index computation, no competitors",
			slog.Int64("property_id", propertyID),
		)
		return nil
	}
	return err
}
