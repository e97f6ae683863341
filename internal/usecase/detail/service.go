package detail

import (
	"context"
	"errors"
	"time"

	"github.com/kailas-cloud/prospect/internal/domain"
)

// DefaultTimeout bounds a detail fetch when the caller does not specify one.
const DefaultTimeout = 5 * time.Second

// RecordStore fetches a full company record by id.
type RecordStore interface {
	Fetch(ctx context.Context, id string) (domain.CompanyRecord, error)
}

// Service wraps record lookups in a deadline so a slow store cannot stall
// the caller. The deadline context is passed into the store (pq cancels the
// server-side query), and the call is additionally raced against the deadline
// so a store that ignores its context is still bounded.
type Service struct {
	store RecordStore
}

// New creates a bounded detail fetcher.
func New(store RecordStore) *Service {
	return &Service{store: store}
}

// Get fetches one company record within timeout (<= 0 means DefaultTimeout).
// Returns domain.ErrCompanyNotFound for unknown ids and a TimeoutError
// wrapping domain.ErrTimeout when the bound expires first.
func (s *Service) Get(ctx context.Context, id string, timeout time.Duration) (domain.CompanyRecord, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		rec domain.CompanyRecord
		err error
	}

	// Buffered so a late store response never leaks the goroutine.
	done := make(chan outcome, 1)
	go func() {
		rec, err := s.store.Fetch(ctx, id)
		done <- outcome{rec: rec, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			if errors.Is(o.err, context.DeadlineExceeded) {
				return domain.CompanyRecord{}, domain.NewTimeout(timeout)
			}
			return domain.CompanyRecord{}, o.err
		}
		return o.rec, nil
	case <-ctx.Done():
		return domain.CompanyRecord{}, domain.NewTimeout(timeout)
	}
}
