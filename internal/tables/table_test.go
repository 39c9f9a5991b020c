package tables

import "testing"

func TestAllowsOrdering(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusAvailable, true},
		{StatusOpen, true},
		{StatusReserved, true},
		{StatusOccupied, false},
		{StatusClosed, false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			table := &Table{Status: tt.status}
			if got := table.AllowsOrdering(); got != tt.want {
				t.Errorf("AllowsOrdering() with status %q = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
