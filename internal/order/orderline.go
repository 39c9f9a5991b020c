package order

import (
	"sort"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Addon is a priced extra attached to an order line. The price is a
// snapshot taken when the line was created; legacy carts submit bare addon
// names, which carry price 0.
type Addon struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// OrderLine is one addressable row of an order. Its ID never changes across
// edits that preserve the line's identity (same menu item, same addon set);
// that identity is the anchor the reconciliation engine diffs against.
// Removed lines are retained with IsRemoved set, never deleted, so the
// kitchen keeps visibility of cancellations.
type OrderLine struct {
	ID         uuid.UUID `bson:"id" json:"id"`
	MenuItemID uuid.UUID `bson:"menu_item_id" json:"menu_item_id"`
	Name       string    `bson:"name" json:"name"`
	Price      float64   `bson:"price" json:"price"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	Addons     []Addon   `bson:"addons,omitempty" json:"addons,omitempty"`
	Status     string    `bson:"status" json:"status"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	IsNew      bool      `bson:"is_new" json:"is_new"`
	IsRemoved  bool      `bson:"is_removed" json:"is_removed"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

func NewOrderLine(menuItemID uuid.UUID, name string, price float64, quantity int, addons []Addon) *OrderLine {
	line := &OrderLine{
		ID:         apt.GenerateNewID(),
		MenuItemID: menuItemID,
		Name:       name,
		Price:      price,
		Quantity:   quantity,
		Addons:     addons,
		Status:     StatusPending,
	}
	line.CreatedAt = time.Now()
	line.UpdatedAt = time.Now()
	return line
}

// IdentityKey groups lines that represent the same menu item with the same
// addon set. Addon order does not matter. Keyed by addon names, not prices:
// a catalog price change must not break the identity of a line already on
// the ticket.
func (l *OrderLine) IdentityKey() string {
	return identityKey(l.MenuItemID, l.Addons)
}

func identityKey(menuItemID uuid.UUID, addons []Addon) string {
	names := make([]string, 0, len(addons))
	for _, a := range addons {
		names = append(names, strings.ToLower(strings.TrimSpace(a.Name)))
	}
	sort.Strings(names)
	return menuItemID.String() + "|" + strings.Join(names, ",")
}
