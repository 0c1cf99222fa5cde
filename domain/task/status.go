package task

import "time"

// State is the lifecycle state of a job run.
type State string

// State values.
const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal reports whether the run has finished.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Status records the most recent run of a batch job.
type Status struct {
	operation  Operation
	state      State
	total      int
	succeeded  int
	failed     int
	message    string
	startedAt  time.Time
	finishedAt time.Time
}

// StartStatus begins a run of operation over total items.
func StartStatus(operation Operation, total int, now time.Time) Status {
	return Status{operation: operation, state: StateRunning, total: total, startedAt: now}
}

// ReconstructStatus recreates a status from persistence.
func ReconstructStatus(
	operation Operation,
	state State,
	total, succeeded, failed int,
	message string,
	startedAt, finishedAt time.Time,
) Status {
	return Status{
		operation:  operation,
		state:      state,
		total:      total,
		succeeded:  succeeded,
		failed:     failed,
		message:    message,
		startedAt:  startedAt,
		finishedAt: finishedAt,
	}
}

// Operation returns the job the status belongs to.
func (s Status) Operation() Operation { return s.operation }

// State returns the run state.
func (s Status) State() State { return s.state }

// Total returns the number of items the run covers.
func (s Status) Total() int { return s.total }

// Succeeded returns the number of items processed without error.
func (s Status) Succeeded() int { return s.succeeded }

// Failed returns the number of items that errored.
func (s Status) Failed() int { return s.failed }

// Message returns the last error or summary message.
func (s Status) Message() string { return s.message }

// StartedAt returns when the run began.
func (s Status) StartedAt() time.Time { return s.startedAt }

// FinishedAt returns when the run ended, zero while running.
func (s Status) FinishedAt() time.Time { return s.finishedAt }

// Record returns a copy with one more processed item.
func (s Status) Record(err error) Status {
	if err != nil {
		s.failed++
		s.message = err.Error()
		return s
	}
	s.succeeded++
	return s
}

// Complete returns a copy marked completed. Per-item failures do not fail a run.
func (s Status) Complete(now time.Time) Status {
	s.state = StateCompleted
	s.finishedAt = now
	return s
}

// Fail returns a copy marked failed with message.
func (s Status) Fail(message string, now time.Time) Status {
	s.state = StateFailed
	s.message = message
	s.finishedAt = now
	return s
}
