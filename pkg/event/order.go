package event

import "time"

const (
	// OrdersTopic carries every order lifecycle event published by the service.
	OrdersTopic = "orders.events"

	EventOrderCreated       = "new-order"
	EventOrderUpdated       = "order-updated"
	EventOrderStatusUpdated = "order-status-updated"
	EventOrderItemUpdated   = "order-item-updated"
	EventOrderPaid          = "order-paid"
	EventOrderCancelled     = "order-cancelled"
)

// OrderEvent is the payload published on OrdersTopic. Kitchen displays and
// customer status pages consume it; delivery is best-effort.
type OrderEvent struct {
	EventType    string    `json:"event_type"`
	OccurredAt   time.Time `json:"occurred_at"`
	OrderID      string    `json:"order_id"`
	TableID      string    `json:"table_id,omitempty"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	Status       string    `json:"status,omitempty"`

	// Set for item-level events
	ItemID     string `json:"item_id,omitempty"`
	ItemStatus string `json:"item_status,omitempty"`

	// Set when a kitchen ticket was printed as part of the change
	KOTNumber int `json:"kot_number,omitempty"`

	// Denormalized data for display purposes
	TableNumber string `json:"table_number,omitempty"`
}
