package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepo persists order aggregates. Save must guarantee that two
// concurrent read-modify-write cycles on the same order never interleave:
// the Mongo implementation does a compare-and-swap on the document version
// and returns ErrConflict when the loaded version lost the race. The core
// never retries; the caller re-reads and resubmits.
type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error)
	ListByStatus(ctx context.Context, status string) ([]*Order, error)
	Save(ctx context.Context, o *Order) error
}
