package order

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Submission is one desired row of an order edit. It arrives already
// resolved against the menu catalog: Name, Price and addon prices are
// snapshots taken at reconciliation time. New lines are created from these
// snapshots; existing lines keep the snapshot they were created with.
type Submission struct {
	MenuItemID uuid.UUID
	Name       string
	Price      float64
	Quantity   int
	Addons     []Addon
	Notes      string
}

// ReconcileResult is the outcome of merging a submitted item list against
// the order's current lines: the new complete line list (removed lines
// retained, flagged) and the structured change log for the edit.
type ReconcileResult struct {
	Items  []OrderLine
	Events []ChangeEvent
}

// Reconciler merges a desired item list into the current line list. Two
// policies exist, selected by the actor who submitted the edit: customers
// get cart-style consolidation, staff get a kitchen-aware merge that never
// loses in-flight preparation state.
type Reconciler interface {
	Reconcile(current []OrderLine, desired []Submission) ReconcileResult
}

// ReconcilerFor selects the policy for an actor tag.
func ReconcilerFor(actor string) Reconciler {
	if actor == ActorStaff {
		return staffReconciler{}
	}
	return customerReconciler{actor: actor}
}

type customerReconciler struct {
	actor string
}

type staffReconciler struct{}

// submissionGroup is the logical desired state for one identity key.
// Duplicate cart rows with the same key are summed into one group before
// reconciliation.
type submissionGroup struct {
	key        string
	menuItemID uuid.UUID
	name       string
	price      float64
	addons     []Addon
	notes      string
	quantity   int
}

func groupSubmissions(desired []Submission) []*submissionGroup {
	var groups []*submissionGroup
	index := make(map[string]*submissionGroup)
	for _, s := range desired {
		key := identityKey(s.MenuItemID, s.Addons)
		if g, ok := index[key]; ok {
			g.quantity += s.Quantity
			if g.notes == "" {
				g.notes = s.Notes
			}
			continue
		}
		g := &submissionGroup{
			key:        key,
			menuItemID: s.MenuItemID,
			name:       s.Name,
			price:      s.Price,
			addons:     s.Addons,
			notes:      s.Notes,
			quantity:   s.Quantity,
		}
		index[key] = g
		groups = append(groups, g)
	}
	return groups
}

func cloneLines(lines []OrderLine) []OrderLine {
	items := make([]OrderLine, len(lines))
	copy(items, lines)
	return items
}

// activeByKey indexes non-removed line positions by identity key, in
// insertion order. Removed lines pass through reconciliation untouched.
func activeByKey(items []OrderLine) map[string][]int {
	byKey := make(map[string][]int)
	for i := range items {
		if items[i].IsRemoved {
			continue
		}
		byKey[items[i].IdentityKey()] = append(byKey[items[i].IdentityKey()], i)
	}
	return byKey
}

// Reconcile implements the customer policy: low-trust, cosmetic edits
// expected before the kitchen commits. Each key consolidates to a single
// line that preserves the prior line's id and status; keys that disappeared
// are retained flagged removed. When a key unexpectedly maps to several
// existing lines with distinct kitchen states, the policy falls back to the
// staff merge for that key rather than guessing which line the customer
// meant.
func (r customerReconciler) Reconcile(current []OrderLine, desired []Submission) ReconcileResult {
	now := time.Now()
	items := cloneLines(current)
	byKey := activeByKey(items)
	groups := groupSubmissions(desired)

	var events []ChangeEvent
	matched := make(map[string]bool, len(groups))

	for _, g := range groups {
		matched[g.key] = true
		idxs := byKey[g.key]

		switch len(idxs) {
		case 0:
			line := NewOrderLine(g.menuItemID, g.name, g.price, g.quantity, g.addons)
			line.Notes = g.notes
			line.IsNew = true
			items = append(items, *line)
			events = append(events, changeEvent(now, ChangeItemAdded, g.name, 0, g.quantity, r.actor))

		case 1:
			line := &items[idxs[0]]
			prior := line.Quantity
			notesChanged := g.notes != "" && g.notes != line.Notes
			line.Quantity = g.quantity
			if notesChanged {
				line.Notes = g.notes
			}
			line.UpdatedAt = now

			switch {
			case g.quantity > prior:
				events = append(events, changeEvent(now, ChangeQuantityIncreased, line.Name, prior, g.quantity, r.actor))
			case g.quantity < prior:
				events = append(events, changeEvent(now, ChangeQuantityDecreased, line.Name, prior, g.quantity, r.actor))
			case notesChanged:
				events = append(events, changeEvent(now, ChangeItemModified, line.Name, prior, g.quantity, r.actor))
			}

		default:
			merged, evs := mergeKeyStaff(items, idxs, g, r.actor, now)
			items = merged
			events = append(events, evs...)
		}
	}

	items, removalEvents := removeUnmatchedCustomer(items, matched, r.actor, now)
	events = append(events, removalEvents...)

	return ReconcileResult{Items: items, Events: events}
}

// removeUnmatchedCustomer flags every active line whose key no longer
// appears in the submission. Lines are retained for audit and kitchen
// visibility, never deleted.
func removeUnmatchedCustomer(items []OrderLine, matched map[string]bool, actor string, now time.Time) ([]OrderLine, []ChangeEvent) {
	var events []ChangeEvent
	for i := range items {
		line := &items[i]
		if line.IsRemoved || matched[line.IdentityKey()] {
			continue
		}
		line.IsRemoved = true
		line.UpdatedAt = now
		events = append(events, changeEvent(now, ChangeItemRemoved, line.Name, line.Quantity, 0, actor))
	}
	return items, events
}

// Reconcile implements the staff policy: trusted, kitchen-aware edits on a
// live ticket. It operates per key on the set of existing lines sharing
// that key, comparing the summed desired quantity against the summed
// existing quantity. Surplus becomes a fresh pending line (work not yet
// started is never merged into an in-progress line); deficits are removed
// from the least advanced lines first.
func (staffReconciler) Reconcile(current []OrderLine, desired []Submission) ReconcileResult {
	now := time.Now()
	items := cloneLines(current)
	byKey := activeByKey(items)
	groups := groupSubmissions(desired)

	var events []ChangeEvent
	matched := make(map[string]bool, len(groups))

	for _, g := range groups {
		matched[g.key] = true
		merged, evs := mergeKeyStaff(items, byKey[g.key], g, ActorStaff, now)
		items = merged
		events = append(events, evs...)
	}

	// Keys absent from the submission are fully removed via the deficit
	// path (desired quantity zero).
	for i := range items {
		line := &items[i]
		key := line.IdentityKey()
		if line.IsRemoved || matched[key] {
			continue
		}
		matched[key] = true
		g := &submissionGroup{key: key, menuItemID: line.MenuItemID, name: line.Name, quantity: 0}
		merged, evs := mergeKeyStaff(items, byKey[key], g, ActorStaff, now)
		items = merged
		events = append(events, evs...)
	}

	return ReconcileResult{Items: items, Events: events}
}

// mergeKeyStaff reconciles one identity key the staff way. idxs are the
// positions of the existing non-removed lines for the key, in insertion
// order; new surplus lines are appended at the end of items.
func mergeKeyStaff(items []OrderLine, idxs []int, g *submissionGroup, actor string, now time.Time) ([]OrderLine, []ChangeEvent) {
	existingTotal := 0
	for _, i := range idxs {
		existingTotal += items[i].Quantity
	}

	name := g.name
	if name == "" && len(idxs) > 0 {
		name = items[idxs[0]].Name
	}

	switch {
	case g.quantity == existingTotal:
		return items, nil

	case g.quantity > existingTotal:
		surplus := g.quantity - existingTotal
		line := NewOrderLine(g.menuItemID, name, g.price, surplus, g.addons)
		line.Notes = g.notes
		line.IsNew = true
		items = append(items, *line)

		if existingTotal == 0 {
			return items, []ChangeEvent{changeEvent(now, ChangeItemAdded, name, 0, g.quantity, actor)}
		}
		return items, []ChangeEvent{changeEvent(now, ChangeQuantityIncreased, name, existingTotal, g.quantity, actor)}

	default:
		deficit := existingTotal - g.quantity

		// Cheapest-to-cancel first: pending before preparing before
		// ready before served. Ties keep insertion order.
		ordered := make([]int, len(idxs))
		copy(ordered, idxs)
		sort.SliceStable(ordered, func(a, b int) bool {
			return statusRank[items[ordered[a]].Status] < statusRank[items[ordered[b]].Status]
		})

		for _, i := range ordered {
			if deficit == 0 {
				break
			}
			line := &items[i]
			if line.Quantity <= deficit {
				// The deficit swallows the whole line: keep it at
				// its final quantity, flagged removed, so the
				// kitchen's produced work stays on record.
				deficit -= line.Quantity
				line.IsRemoved = true
			} else {
				line.Quantity -= deficit
				deficit = 0
			}
			line.UpdatedAt = now
		}

		return items, []ChangeEvent{changeEvent(now, ChangeQuantityDecreased, name, existingTotal, g.quantity, actor)}
	}
}

func changeEvent(now time.Time, changeType, itemName string, oldQty, newQty int, actor string) ChangeEvent {
	return ChangeEvent{
		Timestamp:   now,
		ChangeType:  changeType,
		ItemName:    itemName,
		OldQuantity: oldQty,
		NewQuantity: newQty,
		ChangedBy:   actor,
		Details:     changeDetails(changeType, itemName, oldQty, newQty, actor),
	}
}

func changeDetails(changeType, itemName string, oldQty, newQty int, actor string) string {
	switch changeType {
	case ChangeItemAdded:
		return fmt.Sprintf("%s x%d added by %s", itemName, newQty, actor)
	case ChangeItemRemoved:
		return fmt.Sprintf("%s removed by %s", itemName, actor)
	case ChangeQuantityIncreased, ChangeQuantityDecreased:
		return fmt.Sprintf("%s quantity changed from %d to %d by %s", itemName, oldQty, newQty, actor)
	default:
		return fmt.Sprintf("%s modified by %s", itemName, actor)
	}
}
