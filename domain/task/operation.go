package task

import "strings"

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue.
const (
	OperationRunIndexJob  Operation = "compset.jobs.index"
	OperationRunGraphJob  Operation = "compset.jobs.graph"
	OperationBuildGraph   Operation = "compset.property.build_graph"
	OperationComputeIndex Operation = "compset.property.compute_index"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// IsJob reports whether the operation is a batch job over all properties.
func (o Operation) IsJob() bool {
	return strings.HasPrefix(string(o), "compset.jobs.")
}

// ParseJob maps a short job name ("index", "graph") to its operation.
func ParseJob(name string) (Operation, bool) {
	switch strings.ToLower(name) {
	case "index":
		return OperationRunIndexJob, true
	case "graph":
		return OperationRunGraphJob, true
	}
	return "", false
}

// ScheduledJobs is the recurring batch sequence. The index job comes first
// and is enqueued at the higher priority; the graph job then fills in
// properties that still lack relationships.
func ScheduledJobs() []Operation {
	return []Operation{OperationRunIndexJob, OperationRunGraphJob}
}

// PropertyRecompute rebuilds one property's graph and then its index.
func PropertyRecompute() []Operation {
	return []Operation{OperationBuildGraph, OperationComputeIndex}
}

// All returns every operation a worker must handle.
func All() []Operation {
	return []Operation{
		OperationRunIndexJob,
		OperationRunGraphJob,
		OperationBuildGraph,
		OperationComputeIndex,
	}
}
