package order

import "time"

const (
	ChangeItemAdded         = "item_added"
	ChangeItemRemoved       = "item_removed"
	ChangeQuantityIncreased = "quantity_increased"
	ChangeQuantityDecreased = "quantity_decreased"
	ChangeItemModified      = "item_modified"
)

const (
	ActorCustomer = "customer"
	ActorStaff    = "staff"
)

// ChangeEvent is one immutable entry of an order's update history.
type ChangeEvent struct {
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	ChangeType  string    `bson:"change_type" json:"change_type"`
	ItemName    string    `bson:"item_name" json:"item_name"`
	OldQuantity int       `bson:"old_quantity" json:"old_quantity"`
	NewQuantity int       `bson:"new_quantity" json:"new_quantity"`
	ChangedBy   string    `bson:"changed_by" json:"changed_by"`
	Details     string    `bson:"details,omitempty" json:"details,omitempty"`
}

// IntroducesWork reports whether the event represents food the kitchen has
// not seen yet.
func (e ChangeEvent) IntroducesWork() bool {
	return e.ChangeType == ChangeItemAdded || e.ChangeType == ChangeQuantityIncreased
}

func ValidActor(actor string) bool {
	return actor == ActorCustomer || actor == ActorStaff
}
