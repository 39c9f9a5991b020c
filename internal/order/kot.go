package order

import (
	"time"

	"github.com/google/uuid"
)

// TicketLine is the portion of one order line included on a kitchen ticket:
// only the quantity not covered by earlier tickets.
type TicketLine struct {
	LineID   uuid.UUID `bson:"line_id" json:"line_id"`
	Name     string    `bson:"name" json:"name"`
	Quantity int       `bson:"quantity" json:"quantity"`
	Addons   []Addon   `bson:"addons,omitempty" json:"addons,omitempty"`
	Notes    string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Ticket is one kitchen order ticket (KOT). Tickets form an append-only
// ledger on the order; numbers are monotonic per order and never reused.
type Ticket struct {
	KOTNumber int          `bson:"kot_number" json:"kot_number"`
	Items     []TicketLine `bson:"items" json:"items"`
	PrintedAt time.Time    `bson:"printed_at" json:"printed_at"`
	PrintedBy string       `bson:"printed_by,omitempty" json:"printed_by,omitempty"`
}

// BuildTicket computes the next incremental kitchen ticket: for every line
// still on the ticket it subtracts the quantities already printed across
// all prior KOTs (keyed by line id, so a later-added line for the same dish
// gets its own print count) and includes only the remainder. Returns false
// when nothing is left to print, which makes printing idempotent: a second
// call with no intervening edit is a no-op, not a duplicate print.
//
// A line reduced below its printed total is left alone; the over-printed
// history stays in the ledger as an audit artifact.
func (o *Order) BuildTicket(printedBy string, now time.Time) (*Ticket, bool) {
	printed := make(map[uuid.UUID]int)
	for _, t := range o.KOTs {
		for _, tl := range t.Items {
			printed[tl.LineID] += tl.Quantity
		}
	}

	var lines []TicketLine
	for i := range o.Items {
		line := &o.Items[i]
		if line.IsRemoved || line.Status == StatusCancelled {
			continue
		}
		remaining := line.Quantity - printed[line.ID]
		if remaining <= 0 {
			continue
		}
		lines = append(lines, TicketLine{
			LineID:   line.ID,
			Name:     line.Name,
			Quantity: remaining,
			Addons:   line.Addons,
			Notes:    line.Notes,
		})
	}

	if len(lines) == 0 {
		return nil, false
	}

	ticket := Ticket{
		KOTNumber: len(o.KOTs) + 1,
		Items:     lines,
		PrintedAt: now,
		PrintedBy: printedBy,
	}
	o.KOTs = append(o.KOTs, ticket)
	return &o.KOTs[len(o.KOTs)-1], true
}
