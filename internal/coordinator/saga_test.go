package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
)

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, execErr, compErr error) Step {
	return NewStep(name,
		func(context.Context) error {
			r.calls = append(r.calls, "exec:"+name)
			return execErr
		},
		func(context.Context) error {
			r.calls = append(r.calls, "comp:"+name)
			return compErr
		},
	)
}

func statuses(t *testing.T, repo *sagalog.MemoryRepository, sagaID string) []sagalog.Status {
	t.Helper()
	history, err := repo.History(context.Background(), sagaID)
	require.NoError(t, err)
	out := make([]sagalog.Status, 0, len(history))
	for _, e := range history {
		out = append(out, e.Status)
	}
	return out
}

func TestOrchestrator_AllStepsSucceed(t *testing.T) {
	rec := &recorder{}
	repo := sagalog.NewMemoryRepository()

	o := NewOrchestrator("saga-1", []Step{
		rec.step("a", nil, nil),
		rec.step("b", nil, nil),
	}, repo, WithPayload(`{"k":"v"}`))

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, []string{"exec:a", "exec:b"}, rec.calls)
	assert.Equal(t, []sagalog.Status{
		sagalog.StatusStarted, sagalog.StatusStepDone, sagalog.StatusStepDone, sagalog.StatusCompleted,
	}, statuses(t, repo, "saga-1"))

	history, _ := repo.History(context.Background(), "saga-1")
	assert.Equal(t, `{"k":"v"}`, history[0].Payload)
}

func TestOrchestrator_FailureCompensatesInReverse(t *testing.T) {
	rec := &recorder{}
	repo := sagalog.NewMemoryRepository()
	boom := errors.New("boom")

	o := NewOrchestrator("saga-2", []Step{
		rec.step("a", nil, nil),
		rec.step("b", nil, nil),
		rec.step("c", boom, nil),
		rec.step("d", nil, nil),
	}, repo)

	err := o.Start(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"}, rec.calls)

	latest, err := repo.Latest(context.Background(), "saga-2")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusFailed, latest.Status)
	assert.Equal(t, "c", latest.CurrentStep)
	assert.Equal(t, []string{"step c failed: boom"}, latest.Errors())
}

func TestOrchestrator_CompensationFailureDoesNotStopRollback(t *testing.T) {
	rec := &recorder{}
	repo := sagalog.NewMemoryRepository()

	o := NewOrchestrator("saga-3", []Step{
		rec.step("a", nil, nil),
		rec.step("b", nil, errors.New("stuck")),
		rec.step("c", errors.New("boom"), nil),
	}, repo)

	require.Error(t, o.Start(context.Background()))
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"}, rec.calls)

	latest, _ := repo.Latest(context.Background(), "saga-3")
	assert.Len(t, latest.Errors(), 2)
}

func TestOrchestrator_NilRepository(t *testing.T) {
	rec := &recorder{}
	o := NewOrchestrator("saga-4", []Step{rec.step("a", nil, nil)}, nil)

	require.NoError(t, o.Start(context.Background()))
}

func TestFuncStep_NilCompensation(t *testing.T) {
	s := NewStep("noop", func(context.Context) error { return nil }, nil)

	assert.Equal(t, "noop", s.Name())
	assert.NoError(t, s.Compensate(context.Background()))
}

// ctxRepository fails writes on a done context, like a real database would.
type ctxRepository struct {
	*sagalog.MemoryRepository
}

func (r ctxRepository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.MemoryRepository.Save(ctx, entry)
}

func TestOrchestrator_RollbackSurvivesCancelledContext(t *testing.T) {
	repo := ctxRepository{sagalog.NewMemoryRepository()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var compensated bool
	var compDeadline bool
	o := NewOrchestrator("saga-cancel", []Step{
		NewStep("reserve",
			func(context.Context) error { return nil },
			func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				_, compDeadline = ctx.Deadline()
				compensated = true
				return nil
			},
		),
		NewStep("charge",
			func(ctx context.Context) error {
				cancel()
				return ctx.Err()
			},
			nil,
		),
	}, repo, WithCompensationTimeout(time.Second))

	err := o.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, compensated)
	assert.True(t, compDeadline)

	latest, err := repo.Latest(context.Background(), "saga-cancel")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusFailed, latest.Status)
	assert.Equal(t, "charge", latest.CurrentStep)
	assert.Len(t, latest.Errors(), 1)
}
