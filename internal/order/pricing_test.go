package order

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func TestLinePrice(t *testing.T) {
	tests := []struct {
		name string
		line OrderLine
		want string
	}{
		{
			name: "unitPriceTimesQuantity",
			line: OrderLine{Price: 8.5, Quantity: 2},
			want: "17",
		},
		{
			name: "addonsChargedPerUnit",
			line: OrderLine{Price: 8.5, Quantity: 2, Addons: []Addon{{Name: "Cheese", Price: 1}}},
			want: "19",
		},
		{
			name: "negativePriceTreatedAsZero",
			line: OrderLine{Price: -3, Quantity: 2, Addons: []Addon{{Name: "Cheese", Price: 1}}},
			want: "2",
		},
		{
			name: "nanAddonTreatedAsZero",
			line: OrderLine{Price: 5, Quantity: 1, Addons: []Addon{{Name: "Mystery", Price: math.NaN()}}},
			want: "5",
		},
		{
			name: "zeroQuantityIsFree",
			line: OrderLine{Price: 8.5, Quantity: 0},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinePrice(&tt.line).String(); got != tt.want {
				t.Errorf("LinePrice() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOrderTotal(t *testing.T) {
	lines := []OrderLine{
		{MenuItemID: uuid.New(), Name: "Burger", Price: 8.5, Quantity: 2, Addons: []Addon{{Name: "Cheese", Price: 1}}},
		{MenuItemID: uuid.New(), Name: "Salad", Price: 6, Quantity: 1},
		{MenuItemID: uuid.New(), Name: "Soda", Price: 2, Quantity: 2},
	}

	if got := OrderTotal(lines); got != 29.00 {
		t.Errorf("OrderTotal() = %v, want 29.00", got)
	}
}

func TestOrderTotalSkipsRemovedLines(t *testing.T) {
	lines := []OrderLine{
		{Name: "Burger", Price: 10, Quantity: 1},
		{Name: "Fries", Price: 4, Quantity: 2, IsRemoved: true},
	}

	if got := OrderTotal(lines); got != 10.00 {
		t.Errorf("OrderTotal() = %v, want 10.00", got)
	}
}

func TestOrderTotalRoundsOnceAtTheEnd(t *testing.T) {
	// Each line is exact in decimal; only the final sum is rounded.
	lines := []OrderLine{
		{Name: "A", Price: 3.333, Quantity: 1},
		{Name: "B", Price: 3.333, Quantity: 1},
		{Name: "C", Price: 3.333, Quantity: 1},
	}

	// 9.999 rounds half-up to 10.00. Per-line rounding would give
	// 3.33*3 = 9.99.
	if got := OrderTotal(lines); got != 10.00 {
		t.Errorf("OrderTotal() = %v, want 10.00", got)
	}
}

func TestOrderTotalEmpty(t *testing.T) {
	if got := OrderTotal(nil); got != 0 {
		t.Errorf("OrderTotal(nil) = %v, want 0", got)
	}
}
