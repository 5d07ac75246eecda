package sagalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_HistoryAndLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Save(ctx, &SagaLog{SagaID: "a", Status: StatusStarted}))
	require.NoError(t, repo.Save(ctx, &SagaLog{SagaID: "b", Status: StatusStarted}))
	require.NoError(t, repo.Save(ctx, &SagaLog{SagaID: "a", Status: StatusCompleted}))

	history, err := repo.History(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	latest, err := repo.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, latest.Status)

	_, err = repo.Latest(ctx, "missing")
	assert.ErrorIs(t, err, ErrSagaNotFound)
}

func TestMemoryRepository_MaxEntriesEvictsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(WithMaxEntries(3))

	for i := range 10 {
		require.NoError(t, repo.Save(ctx, &SagaLog{SagaID: fmt.Sprintf("saga-%d", i), Status: StatusStarted}))
	}

	assert.Equal(t, 3, repo.Len())
	_, err := repo.Latest(ctx, "saga-6")
	assert.ErrorIs(t, err, ErrSagaNotFound)
	for _, id := range []string{"saga-7", "saga-8", "saga-9"} {
		_, err := repo.Latest(ctx, id)
		assert.NoError(t, err, id)
	}
}
