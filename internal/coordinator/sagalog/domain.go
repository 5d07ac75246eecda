// Package sagalog records every state transition of a checkout saga.
//
// The log is append-only and serves two readers:
//
//  1. Operators: a failed or half-compensated checkout can be inspected after
//     the fact, and the trace_id on each entry leads straight to its trace.
//
//  2. Recovery: an entry whose latest status is not Terminal belongs to a
//     checkout that was interrupted, and its STARTED payload holds the cart
//     snapshot needed to compensate it by hand.
package sagalog

import "time"

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Terminal reports whether no further transitions follow this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SagaLog is one appended transition of a saga. Entries are never updated;
// the current state of a saga is its most recent entry.
type SagaLog struct {
	// SagaID is the checkout ID the saga runs under. It is also returned to
	// the caller, so a support request can be matched to its log.
	SagaID string

	// Status is the lifecycle state reached by this transition.
	Status Status

	// CurrentStep is the step that just finished or failed, for example
	// "decrement_stock:42". Empty on STARTED and COMPLETED.
	CurrentStep string

	// Payload is the JSON cart snapshot (user, product ids, quantities and
	// frozen prices). It is written on STARTED only and left empty after.
	Payload string

	// ErrorMessages is a JSON array of failure strings in the order they
	// happened: the failing step first, then one per failed compensation.
	ErrorMessages string

	// TraceID and SpanID identify the OpenTelemetry span active when the
	// entry was written. Both are empty when tracing is disabled.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
