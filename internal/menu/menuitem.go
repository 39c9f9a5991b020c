package menu

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Addon is a priced extra a menu item offers.
type Addon struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// MenuItem is a catalog entry. The ordering core reads it to snapshot names
// and prices onto order lines; catalog management itself lives elsewhere.
type MenuItem struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	RestaurantID uuid.UUID `bson:"restaurant_id" json:"restaurant_id"`
	Name         string    `bson:"name" json:"name"`
	Category     string    `bson:"category,omitempty" json:"category,omitempty"`
	Price        float64   `bson:"price" json:"price"`
	Addons       []Addon   `bson:"addons,omitempty" json:"addons,omitempty"`
	Available    bool      `bson:"available" json:"available"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

func (m *MenuItem) ResourceType() string {
	return "menu-item"
}

// AddonPrice resolves the surcharge for an addon name. Names absent from
// the catalog price at zero (legacy bare-name addons).
func (m *MenuItem) AddonPrice(name string) float64 {
	for _, a := range m.Addons {
		if strings.EqualFold(a.Name, name) {
			return a.Price
		}
	}
	return 0
}

// Repo provides read-only catalog lookups for the ordering core.
type Repo interface {
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*MenuItem, error)
}
