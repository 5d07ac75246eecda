package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "saga.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_SaveAndHistory(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "chk-1", sagalog.StatusStarted, "", `{"user_id":"u1"}`, nil)))
	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "chk-1", sagalog.StatusStepDone, "create_order", "", nil)))
	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "chk-2", sagalog.StatusStarted, "", "", nil)))
	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "chk-1", sagalog.StatusFailed, "decrement_stock", "", []string{"boom"})))

	history, err := repo.History(ctx, "chk-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, sagalog.StatusStarted, history[0].Status)
	assert.Equal(t, `{"user_id":"u1"}`, history[0].Payload)
	assert.Equal(t, "", history[1].Payload)
	assert.Equal(t, "create_order", history[1].CurrentStep)
	assert.Equal(t, []string{"boom"}, history[2].Errors())

	latest, err := repo.Latest(ctx, "chk-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusFailed, latest.Status)
	assert.True(t, latest.Status.Terminal())
}

func TestRepository_LatestNotFound(t *testing.T) {
	repo := openTemp(t)

	_, err := repo.Latest(context.Background(), "missing")
	assert.ErrorIs(t, err, sagalog.ErrSagaNotFound)
}
