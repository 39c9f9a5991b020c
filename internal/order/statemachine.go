package order

// Order-level statuses. Items share the same strings minus paid.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// statusRank orders item statuses by how far the kitchen has advanced them.
// The staff reconciliation policy removes quantity from the least advanced
// lines first: never silently cancel food already being cooked or served
// while an unstarted portion exists.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusServed:    3,
	StatusCancelled: 4,
}

func ValidOrderStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

func ValidItemStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCancelled:
		return true
	}
	return false
}

func itemStatusTerminal(s string) bool {
	return s == StatusServed || s == StatusCancelled
}

// CanTransitionItem validates a line-level move: forward along
// pending -> preparing -> ready -> served, with cancellation reachable from
// any non-terminal state. Backward moves are rejected.
func CanTransitionItem(from, to string) bool {
	if !ValidItemStatus(from) || !ValidItemStatus(to) {
		return false
	}
	if itemStatusTerminal(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

// ApplyOrderStatus validates and applies an explicit order-level status
// change (a full-ticket override by staff). Terminal orders reject any
// change; cancellation is only possible before the kitchen starts; paid is
// reachable only through RecordPayment.
func (o *Order) ApplyOrderStatus(status string) error {
	if !ValidOrderStatus(status) {
		return validationf("invalid status %q", status)
	}
	if o.IsTerminal() {
		return conflictf("order is %s", o.Status)
	}
	switch status {
	case StatusPaid:
		return validationf("use the payment operation to mark an order paid")
	case StatusCancelled:
		if o.Status != StatusPending {
			return conflictf("cannot cancel an order that is %s", o.Status)
		}
	}
	o.Status = status
	return nil
}

// DeriveStatusFromItems applies the status-derivation rule after item-level
// mutations: when every non-removed, non-cancelled line shares one status,
// the order follows it. The justSet argument is the status the mutation
// applied; preparing is promoted early, before unanimity, because the first
// item on the stove means the ticket is in progress.
// Returns true when the order status changed.
func (o *Order) DeriveStatusFromItems(justSet string) bool {
	if o.IsTerminal() {
		return false
	}

	unanimous := ""
	for i := range o.Items {
		line := &o.Items[i]
		if line.IsRemoved || line.Status == StatusCancelled {
			continue
		}
		if unanimous == "" {
			unanimous = line.Status
			continue
		}
		if line.Status != unanimous {
			unanimous = ""
			break
		}
	}

	if unanimous != "" && unanimous != o.Status {
		o.Status = unanimous
		return true
	}

	if justSet == StatusPreparing && o.Status == StatusPending {
		o.Status = StatusPreparing
		return true
	}

	return false
}

// ReopenForNewWork forces an in-progress or finished ticket back into the
// kitchen queue when a reconciliation introduced new work. New food must
// re-enter the queue regardless of how far the rest of the ticket got.
// Returns true when the order was reopened.
func (o *Order) ReopenForNewWork(changes []ChangeEvent) bool {
	switch o.Status {
	case StatusPreparing, StatusReady, StatusServed:
	default:
		return false
	}
	for _, e := range changes {
		if e.IntroducesWork() {
			o.Status = StatusPending
			o.HasUnseenChanges = true
			return true
		}
	}
	return false
}
