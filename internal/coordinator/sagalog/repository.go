package sagalog

import (
	"context"
	"errors"
)

var ErrSagaNotFound = errors.New("saga not found")

// Repository persists saga log entries. The table is append-only.
type Repository interface {
	Save(ctx context.Context, entry *SagaLog) error
}

// Reader is implemented by repositories that can replay a saga's history.
type Reader interface {
	// History returns every entry of sagaID in write order.
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
	// Latest returns the most recent entry of sagaID or ErrSagaNotFound.
	Latest(ctx context.Context, sagaID string) (*SagaLog, error)
}
