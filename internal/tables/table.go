package tables

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	StatusAvailable = "available"
	StatusOpen      = "open"
	StatusReserved  = "reserved"
	StatusOccupied  = "occupied"
	StatusClosed    = "closed"
)

// Table is a dine-in table reachable through a QR session. The ordering
// core reads it to resolve the owning restaurant and to guard against
// orders on tables that cannot accept them.
type Table struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	RestaurantID uuid.UUID `bson:"restaurant_id" json:"restaurant_id"`
	Number       string    `bson:"number" json:"number"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

// AllowsOrdering reports whether new orders may be placed for the table.
func (t *Table) AllowsOrdering() bool {
	switch t.Status {
	case StatusAvailable, StatusOpen, StatusReserved:
		return true
	}
	return false
}

// Repo provides read-only table lookups for the ordering core.
type Repo interface {
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
}
