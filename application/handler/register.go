package handler

import (
	"github.com/helixml/compset/application/service"
	"github.com/helixml/compset/domain/task"
)

// Handlers groups the handler for every queued operation.
type Handlers struct {
	IndexJob     *IndexJob
	GraphJob     *GraphJob
	BuildGraph   *BuildGraph
	ComputeIndex *ComputeIndex
}

// Register adds every handler to the worker registry.
func (h Handlers) Register(r *service.Registry) {
	r.Register(task.OperationRunIndexJob, h.IndexJob)
	r.Register(task.OperationRunGraphJob, h.GraphJob)
	r.Register(task.OperationBuildGraph, h.BuildGraph)
	r.Register(task.OperationComputeIndex, h.ComputeIndex)
}
