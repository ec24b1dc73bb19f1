package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	"github.com/kmarube/eventquote-api/internal/domain/enum"
	"github.com/kmarube/eventquote-api/pkg/pagination"
)

// QuotationRepository is the collection store contract the core depends
// on. Both backends (Postgres and the flat JSON file) satisfy it.
//
// GetByID returns (nil, nil) when no record matches; Delete is
// idempotent and succeeds against an absent id. Upsert creates the
// record when absent and overwrites it when present; callers stamp
// UpdatedAt and recompute derived totals immediately before the call.
type QuotationRepository interface {
	Create(ctx context.Context, quotation *entity.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quotation, error)
	Upsert(ctx context.Context, quotation *entity.Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, params *QuotationFilterParams) ([]entity.Quotation, int64, error)
	ListAll(ctx context.Context, ownerID uuid.UUID) ([]entity.Quotation, error)
	Watch(ctx context.Context, ownerID uuid.UUID) (*Subscription, error)
}

// QuotationFilterParams contains filtering parameters for quotation queries
type QuotationFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.QuotationStatus
}

// Subscription is a cancellable live view of one owner's collection.
// Every mutation delivers a full replacement snapshot on C; snapshots
// are never partial and never merged by the consumer. When a consumer
// lags, older snapshots are dropped in favour of the latest one.
type Subscription struct {
	C      <-chan []entity.Quotation
	cancel func()
}

// NewSubscription wraps a snapshot channel with its cancel hook.
func NewSubscription(c <-chan []entity.Quotation, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Cancel detaches the subscription. The snapshot channel is closed and
// no further snapshots are delivered. Safe to call more than once,
// including concurrently; the hook itself guards against reentry.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}
