package order

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// BatchOriginal is the batch key assigned to the lines of the initial
// placement. Every subsequent edit gets "update-N" (see NextBatchKey) and
// BatchAll replaces the whole map on a full-ticket status override.
const (
	BatchOriginal = "original"
	BatchAll      = "all"
)

// Order is the aggregate root for one dine-in session. Everything the
// reconciliation core touches lives in this single document: the line items,
// the per-batch statuses, the append-only change history and the KOT ledger.
// It is persisted as one document so an edit is an all-or-nothing write.
type Order struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	TableID      uuid.UUID `bson:"table_id" json:"table_id"`
	RestaurantID uuid.UUID `bson:"restaurant_id" json:"restaurant_id"`
	CustomerName string    `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`

	Items  []OrderLine `bson:"items" json:"items"`
	Status string      `bson:"status" json:"status"`
	Total  float64     `bson:"total" json:"total"`

	// BatchStatus tracks one status per update batch so staff can see
	// partial fulfillment ("the first round is served, round two is still
	// cooking").
	BatchStatus map[string]string `bson:"batch_status" json:"batch_status"`

	UpdateCount      int  `bson:"update_count" json:"update_count"`
	IsUpdated        bool `bson:"is_updated" json:"is_updated"`
	HasUnseenChanges bool `bson:"has_unseen_changes" json:"has_unseen_changes"`

	// UpdateHistory and KOTs are append-only ledgers; entries are never
	// mutated or deleted.
	UpdateHistory []ChangeEvent `bson:"update_history,omitempty" json:"update_history,omitempty"`
	KOTs          []Ticket      `bson:"kots,omitempty" json:"kots,omitempty"`

	// OriginalItems is snapshotted exactly once, right before the first
	// edit. Retained for audit/display only; reconciliation always diffs
	// against the live Items.
	OriginalItems []OrderLine `bson:"original_items,omitempty" json:"original_items,omitempty"`

	PaymentMethod string     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// ModelVersion backs the optimistic save: two concurrent
	// reconciliations on the same order can never both win the write.
	ModelVersion int `bson:"model_version" json:"model_version"`
}

func NewOrder() *Order {
	return &Order{
		ID:          apt.GenerateNewID(),
		Status:      StatusPending,
		BatchStatus: map[string]string{BatchOriginal: StatusPending},
	}
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = apt.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// IsTerminal reports whether the order rejects further edits.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusPaid || o.Status == StatusCancelled
}

// ActiveLines returns the lines still on the ticket (not flagged removed).
func (o *Order) ActiveLines() []*OrderLine {
	var result []*OrderLine
	for i := range o.Items {
		if !o.Items[i].IsRemoved {
			result = append(result, &o.Items[i])
		}
	}
	return result
}

// LineByID finds a line by its stable id.
func (o *Order) LineByID(id uuid.UUID) *OrderLine {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// SnapshotOriginalItems captures the pre-edit line list exactly once,
// guarded by IsUpdated. Later edits never overwrite it.
func (o *Order) SnapshotOriginalItems() {
	if o.IsUpdated {
		return
	}
	o.OriginalItems = make([]OrderLine, len(o.Items))
	copy(o.OriginalItems, o.Items)
}

// NextBatchKey increments the update counter and returns the batch key for
// the edit being applied ("update-1" for the first edit, and so on).
func (o *Order) NextBatchKey() string {
	o.UpdateCount++
	return batchKey(o.UpdateCount)
}

// MarkSeen clears the transient new-line flags and the unseen-changes bit.
// Removed lines stay flagged so they remain excluded from totals and
// tickets.
func (o *Order) MarkSeen() {
	for i := range o.Items {
		o.Items[i].IsNew = false
	}
	o.HasUnseenChanges = false
}

// RecordPayment moves the order to paid. Allowed only from served.
func (o *Order) RecordPayment(method string) error {
	if o.Status != StatusServed {
		return conflictf("order is %s, payment requires served", o.Status)
	}
	now := time.Now()
	o.Status = StatusPaid
	o.PaymentMethod = method
	o.PaidAt = &now
	o.UpdatedAt = now
	return nil
}
