package sagalog

import (
	"context"
	"sync"
)

// MemoryRepository keeps saga logs in process. Used when no SAGA_LOG_PATH is
// configured and in tests. With a limit set, the oldest entries are evicted
// once the log holds more than limit entries.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []SagaLog
	limit   int
}

type MemoryOption func(*MemoryRepository)

// WithMaxEntries caps the number of retained entries. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(r *MemoryRepository) {
		if n > 0 {
			r.limit = n
		}
	}
}

func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRepository) Save(_ context.Context, entry *SagaLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	if r.limit > 0 && len(r.entries) > r.limit {
		// copy down so the backing array does not keep growing
		n := copy(r.entries, r.entries[len(r.entries)-r.limit:])
		clear(r.entries[n:])
		r.entries = r.entries[:n]
	}
	return nil
}

// Len reports how many entries are retained.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *MemoryRepository) History(_ context.Context, sagaID string) ([]SagaLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []SagaLog
	for _, e := range r.entries {
		if e.SagaID == sagaID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Latest(ctx context.Context, sagaID string) (*SagaLog, error) {
	history, _ := r.History(ctx, sagaID)
	if len(history) == 0 {
		return nil, ErrSagaNotFound
	}
	last := history[len(history)-1]
	return &last, nil
}
