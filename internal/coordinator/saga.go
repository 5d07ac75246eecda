package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
)

const tracerName = "github.com/jcmexdev/storefront/internal/coordinator"

// DefaultCompensationTimeout bounds the whole rollback of a failed saga.
const DefaultCompensationTimeout = 30 * time.Second

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	sagaID  string
	steps   []Step
	logRepo sagalog.Repository // nil-safe: transitions are not persisted if nil
	payload string
	logger  *slog.Logger

	compensationTimeout time.Duration
}

type Option func(*Orchestrator)

// WithPayload stores the JSON input of the saga on its STARTED log entry.
func WithPayload(payload string) Option {
	return func(o *Orchestrator) { o.payload = payload }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithCompensationTimeout overrides DefaultCompensationTimeout.
func WithCompensationTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.compensationTimeout = d
		}
	}
}

func NewOrchestrator(sagaID string, steps []Step, repo sagalog.Repository, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sagaID:  sagaID,
		steps:   steps,
		logRepo: repo,
		logger:  slog.Default(),

		compensationTimeout: DefaultCompensationTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start runs the saga steps sequentially.
// If a step fails, it triggers the compensation of all previously successful
// steps and returns the step's error unchanged.
//
// The rollback and the log entries written after a failure ignore ctx's
// cancellation; they keep its values and trace and are bounded by the
// compensation timeout instead.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "saga "+o.sagaID)
	defer span.End()

	o.record(ctx, sagalog.StatusStarted, "", o.payload, nil)

	var successfulSteps []Step

	for _, step := range o.steps {
		o.logger.DebugContext(ctx, "executing saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := o.execute(ctx, step); err != nil {
			o.logger.WarnContext(ctx, "saga step failed, starting rollback",
				"saga_id", o.sagaID, "step", step.Name(), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, step.Name()+" failed")

			compCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.compensationTimeout)
			defer cancel()

			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(compCtx, sagalog.StatusCompensating, step.Name(), "", errs)
			errs = append(errs, o.rollback(compCtx, successfulSteps)...)
			o.record(compCtx, sagalog.StatusFailed, step.Name(), "", errs)
			return err
		}
		// Track successful step for potential compensation (LIFO)
		successfulSteps = append(successfulSteps, step)
		o.record(ctx, sagalog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, sagalog.StatusCompleted, "", "", nil)
	o.logger.InfoContext(ctx, "saga completed", "saga_id", o.sagaID, "steps", len(o.steps))
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, step Step) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, step.Name())
	defer span.End()
	span.SetAttributes(attribute.String("saga.id", o.sagaID))

	if err := step.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// rollback compensates the given steps in reverse order and returns a message
// per compensation that failed. A failed compensation does not stop the rest.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var failures []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		o.logger.InfoContext(ctx, "compensating saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			o.logger.ErrorContext(ctx, "CRITICAL: failed to compensate step",
				"saga_id", o.sagaID, "step", step.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return failures
}

func (o *Orchestrator) record(ctx context.Context, status sagalog.Status, step, payload string, errs []string) {
	if o.logRepo == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, o.sagaID, status, step, payload, errs)
	if err := o.logRepo.Save(ctx, entry); err != nil {
		o.logger.ErrorContext(ctx, "saga log write failed", "saga_id", o.sagaID, "status", status, "error", err)
	}
}
