package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/Dead-0User/digital-table-backend/internal/menu"
	"github.com/Dead-0User/digital-table-backend/internal/tables"
	"github.com/Dead-0User/digital-table-backend/pkg/event"
)

// ItemSubmission is one desired row as submitted by a customer cart or a
// staff edit: a menu item reference, a quantity, addon names and optional
// special instructions. Prices are never trusted from the client; they are
// resolved from the catalog.
type ItemSubmission struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Addons     []string  `json:"addons,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// PlaceOrderInput carries everything needed to open a new table order.
type PlaceOrderInput struct {
	TableID      uuid.UUID
	CustomerName string
	Notes        string
	Items        []ItemSubmission
}

// Service implements the ordering core: reconciliation, state transitions,
// batch tracking and ticket generation, each executed as a single
// read-modify-write against one order document. Event publishing is
// best-effort and never fails a mutation.
type Service struct {
	orders    OrderRepo
	menu      menu.Repo
	tables    tables.Repo
	publisher events.Publisher
	logger    apt.Logger
}

type ServiceDeps struct {
	Orders    OrderRepo
	Menu      menu.Repo
	Tables    tables.Repo
	Publisher events.Publisher
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Service{
		orders:    deps.Orders,
		menu:      deps.Menu,
		tables:    deps.Tables,
		publisher: deps.Publisher,
		logger:    logger,
	}
}

// PlaceOrder constructs a new order in pending with batch "original".
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, validationf("order must contain at least one item")
	}
	if in.TableID == uuid.Nil {
		return nil, validationf("table_id is required")
	}

	table, err := s.tables.Get(ctx, in.TableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, notFoundf("table %s", in.TableID)
	}
	if table.RestaurantID == uuid.Nil {
		return nil, configurationf("table %s has no owning restaurant", in.TableID)
	}
	if !table.AllowsOrdering() {
		return nil, conflictf("table is %s", table.Status)
	}

	subs, err := s.resolveSubmissions(ctx, table.RestaurantID, in.Items)
	if err != nil {
		return nil, err
	}

	o := NewOrder()
	o.TableID = in.TableID
	o.RestaurantID = table.RestaurantID
	o.CustomerName = in.CustomerName
	o.Notes = in.Notes

	// Duplicate cart rows for the same dish+addons collapse into one line
	// on placement, same as they would on a later edit.
	for _, g := range groupSubmissions(subs) {
		line := NewOrderLine(g.menuItemID, g.name, g.price, g.quantity, g.addons)
		line.Notes = g.notes
		o.Items = append(o.Items, *line)
	}
	o.Total = OrderTotal(o.Items)
	o.BeforeCreate()

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, baseEvent(event.EventOrderCreated, o))
	return o, nil
}

// UpdateOrder reconciles a resubmitted item list against the order's
// current lines under the policy selected by actor, then applies the
// reopening rule, records the edit batch and persists the whole aggregate
// in one write.
func (s *Service) UpdateOrder(ctx context.Context, orderID uuid.UUID, items []ItemSubmission, actor string) (*Order, error) {
	if !ValidActor(actor) {
		return nil, validationf("unknown actor %q", actor)
	}
	if len(items) == 0 {
		return nil, validationf("update must contain at least one item")
	}

	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsTerminal() {
		return nil, conflictf("order is %s and cannot be edited", o.Status)
	}
	if o.RestaurantID == uuid.Nil {
		return nil, configurationf("order %s has no owning restaurant", orderID)
	}

	subs, err := s.resolveSubmissions(ctx, o.RestaurantID, items)
	if err != nil {
		return nil, err
	}

	o.SnapshotOriginalItems()

	rec := ReconcilerFor(actor).Reconcile(o.Items, subs)
	o.Items = rec.Items
	o.UpdateHistory = append(o.UpdateHistory, rec.Events...)
	o.Total = OrderTotal(o.Items)

	o.ReopenForNewWork(rec.Events)

	o.RecordBatch(o.NextBatchKey(), StatusPending)
	o.IsUpdated = true
	if len(rec.Events) > 0 {
		o.HasUnseenChanges = true
	}

	o.BeforeUpdate()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, baseEvent(event.EventOrderUpdated, o))
	return o, nil
}

// SetOrderStatus applies an order-level status change. With no batch
// targets it is a full-ticket override that collapses the batch map to
// "all"; with targets it updates those batches and synchronizes the order
// status when all batches converge.
func (s *Service) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, batchIDs []string) (*Order, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if len(batchIDs) == 0 {
		if err := o.OverrideStatus(status); err != nil {
			return nil, err
		}
	} else {
		if !ValidOrderStatus(status) || status == StatusPaid {
			return nil, validationf("invalid batch status %q", status)
		}
		if o.IsTerminal() {
			return nil, conflictf("order is %s", o.Status)
		}
		if _, err := o.SetBatchStatus(batchIDs, status); err != nil {
			return nil, err
		}
	}

	o.BeforeUpdate()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, baseEvent(event.EventOrderStatusUpdated, o))
	if o.Status == StatusCancelled {
		s.publish(ctx, baseEvent(event.EventOrderCancelled, o))
	}
	return o, nil
}

// SetItemStatus transitions a single line.
func (s *Service) SetItemStatus(ctx context.Context, orderID, lineID uuid.UUID, status string) (*Order, error) {
	return s.SetItemsStatusBulk(ctx, orderID, []uuid.UUID{lineID}, status)
}

// SetItemsStatusBulk transitions several lines at once, then re-derives the
// order status. All transitions are validated before any line is touched,
// so a rejected call mutates nothing.
func (s *Service) SetItemsStatusBulk(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID, status string) (*Order, error) {
	if len(lineIDs) == 0 {
		return nil, validationf("at least one item is required")
	}
	if !ValidItemStatus(status) {
		return nil, validationf("invalid item status %q", status)
	}

	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsTerminal() {
		return nil, conflictf("order is %s", o.Status)
	}

	lines := make([]*OrderLine, 0, len(lineIDs))
	for _, id := range lineIDs {
		line := o.LineByID(id)
		if line == nil {
			return nil, notFoundf("order item %s", id)
		}
		if line.IsRemoved {
			return nil, validationf("item %s was removed from the order", id)
		}
		if !CanTransitionItem(line.Status, status) {
			return nil, conflictf("item %s cannot move from %s to %s", id, line.Status, status)
		}
		lines = append(lines, line)
	}

	now := time.Now()
	for _, line := range lines {
		line.Status = status
		line.UpdatedAt = now
	}
	statusChanged := o.DeriveStatusFromItems(status)

	o.BeforeUpdate()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	for _, line := range lines {
		evt := baseEvent(event.EventOrderItemUpdated, o)
		evt.ItemID = line.ID.String()
		evt.ItemStatus = line.Status
		s.publish(ctx, evt)
	}
	if statusChanged {
		s.publish(ctx, baseEvent(event.EventOrderStatusUpdated, o))
	}
	return o, nil
}

// RecordPayment marks the order paid. Allowed only from served; the method
// string is recorded as-is, actual payment processing happens elsewhere.
func (s *Service) RecordPayment(ctx context.Context, orderID uuid.UUID, method string) (*Order, error) {
	if method == "" {
		return nil, validationf("payment method is required")
	}

	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.RecordPayment(method); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, baseEvent(event.EventOrderPaid, o))
	return o, nil
}

// GenerateTicket appends the next incremental KOT to the order's ledger and
// returns it. Returns (nil, nil) when every line is fully printed: printing
// twice without an intervening edit is a no-op, not an error.
func (s *Service) GenerateTicket(ctx context.Context, orderID uuid.UUID, printedBy string) (*Ticket, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsTerminal() {
		return nil, conflictf("order is %s", o.Status)
	}

	ticket, ok := o.BuildTicket(printedBy, time.Now())
	if !ok {
		return nil, nil
	}

	o.BeforeUpdate()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	evt := baseEvent(event.EventOrderUpdated, o)
	evt.KOTNumber = ticket.KOTNumber
	s.publish(ctx, evt)
	return ticket, nil
}

// MarkSeen clears the transient new-item flags and the unseen-changes bit.
func (s *Service) MarkSeen(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.MarkSeen()
	o.BeforeUpdate()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context) ([]*Order, error) {
	return s.orders.List(ctx)
}

func (s *Service) ListOrdersByTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error) {
	return s.orders.ListByTable(ctx, tableID)
}

func (s *Service) ListOrdersByStatus(ctx context.Context, status string) ([]*Order, error) {
	return s.orders.ListByStatus(ctx, status)
}

// resolveSubmissions turns client-submitted rows into catalog-priced
// submissions: quantities validated, menu item resolved to a name and unit
// price snapshot, addon names resolved to priced addons. Addon names absent
// from the catalog price at zero.
func (s *Service) resolveSubmissions(ctx context.Context, restaurantID uuid.UUID, items []ItemSubmission) ([]Submission, error) {
	subs := make([]Submission, 0, len(items))
	for _, item := range items {
		if item.MenuItemID == uuid.Nil {
			return nil, validationf("menu_item_id is required")
		}
		if item.Quantity < 1 {
			return nil, validationf("quantity must be at least 1")
		}

		mi, err := s.menu.Get(ctx, item.MenuItemID)
		if err != nil {
			return nil, err
		}
		if mi == nil || mi.RestaurantID != restaurantID {
			return nil, notFoundf("menu item %s", item.MenuItemID)
		}
		if !mi.Available {
			return nil, validationf("menu item %s is not available", mi.Name)
		}

		addons := make([]Addon, 0, len(item.Addons))
		for _, name := range item.Addons {
			addons = append(addons, Addon{Name: name, Price: mi.AddonPrice(name)})
		}

		subs = append(subs, Submission{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Price:      mi.Price,
			Quantity:   item.Quantity,
			Addons:     addons,
			Notes:      item.Notes,
		})
	}
	return subs, nil
}

func (s *Service) loadOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	if id == uuid.Nil {
		return nil, validationf("order id is required")
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, notFoundf("order %s", id)
	}
	return o, nil
}

func baseEvent(eventType string, o *Order) event.OrderEvent {
	return event.OrderEvent{
		EventType:    eventType,
		OrderID:      o.ID.String(),
		TableID:      o.TableID.String(),
		RestaurantID: o.RestaurantID.String(),
		Status:       o.Status,
	}
}

// publish announces an order mutation. Failures are logged and swallowed;
// a lost notification never rolls back a persisted change.
func (s *Service) publish(ctx context.Context, evt event.OrderEvent) {
	if s.publisher == nil {
		return
	}
	evt.OccurredAt = time.Now().UTC()

	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("cannot marshal order event", "error", err, "event_type", evt.EventType)
		return
	}
	if err := s.publisher.Publish(ctx, event.OrdersTopic, payload); err != nil {
		s.logger.Error("cannot publish order event", "error", err, "event_type", evt.EventType, "order_id", evt.OrderID)
	}
}
