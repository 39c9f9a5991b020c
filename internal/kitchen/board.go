package kitchen

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/Dead-0User/digital-table-backend/internal/order"
	"github.com/Dead-0User/digital-table-backend/pkg/event"
)

// Board maintains an in-memory view of the open orders each kitchen
// display shows, indexed by restaurant. Terminal orders fall off the
// board; everything else is the full aggregate so the display can render
// lines, batches and unseen-change markers without a round trip.
type Board struct {
	mu sync.RWMutex
	// orders indexed by order_id
	orders map[uuid.UUID]*order.Order
	// index by restaurant_id -> order_id
	byRestaurant map[uuid.UUID][]uuid.UUID

	stream events.StreamConsumer // For event replay on startup
	repo   order.OrderRepo       // Source of truth for aggregates
	logger apt.Logger
}

// NewBoard creates an empty kitchen board.
func NewBoard(stream events.StreamConsumer, repo order.OrderRepo, logger apt.Logger) *Board {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Board{
		orders:       make(map[uuid.UUID]*order.Order),
		byRestaurant: make(map[uuid.UUID][]uuid.UUID),
		stream:       stream,
		repo:         repo,
		logger:       logger,
	}
}

// Warm rebuilds the board. Event replay from the persistent stream is
// tried first to find recently touched orders; if the stream is
// unavailable the board falls back to scanning the active statuses in
// MongoDB.
func (b *Board) Warm(ctx context.Context) error {
	if b.stream != nil {
		if err := b.warmFromStream(ctx); err != nil {
			b.logger.Info("stream replay failed, falling back to MongoDB", "error", err)
		} else {
			return nil
		}
	}

	if b.repo == nil {
		b.logger.Info("neither stream nor repo configured, board remains empty")
		return nil
	}

	return b.warmFromRepo(ctx)
}

// warmFromStream replays order events to discover which orders were alive
// recently, then loads each aggregate from the repository.
func (b *Board) warmFromStream(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Info("stream panic recovered, falling back to MongoDB", "panic", r)
		}
	}()

	b.logger.Info("warming kitchen board from event stream")

	messages, err := b.stream.Fetch(ctx, 10000)
	if err != nil {
		return err
	}

	seen := make(map[uuid.UUID]bool)
	for _, msg := range messages {
		var evt event.OrderEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			continue
		}
		id, err := uuid.Parse(evt.OrderID)
		if err != nil {
			continue
		}
		seen[id] = true
	}

	var loaded int
	for id := range seen {
		o, err := b.repo.Get(ctx, id)
		if err != nil {
			b.logger.Info("cannot load order during board warmup", "order_id", id.String(), "error", err)
			continue
		}
		if o == nil || o.IsTerminal() {
			continue
		}
		b.Set(o)
		loaded++
	}

	b.logger.Info("kitchen board warmed from stream", "events", len(messages), "orders", loaded)
	return nil
}

// warmFromRepo scans the active statuses directly (fallback).
func (b *Board) warmFromRepo(ctx context.Context) error {
	b.logger.Info("warming kitchen board from MongoDB")

	var loaded int
	for _, status := range []string{order.StatusPending, order.StatusPreparing, order.StatusReady, order.StatusServed} {
		batch, err := b.repo.ListByStatus(ctx, status)
		if err != nil {
			b.logger.Info("cannot list orders during board warmup, board may be partial", "status", status, "error", err)
			continue
		}
		for _, o := range batch {
			b.Set(o)
			loaded++
		}
	}

	b.logger.Info("kitchen board warmed from MongoDB", "orders", loaded)
	return nil
}

// Refresh reloads one order from the repository and reindexes it.
func (b *Board) Refresh(ctx context.Context, id uuid.UUID) error {
	if b.repo == nil {
		return nil
	}
	o, err := b.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if o == nil || o.IsTerminal() {
		b.Remove(id)
		return nil
	}
	b.Set(o)
	return nil
}

// Set updates or adds an order to the board.
func (b *Board) Set(o *order.Order) {
	if o == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if old, exists := b.orders[o.ID]; exists {
		b.removeFromIndex(old.RestaurantID, o.ID)
	}
	b.orders[o.ID] = o
	b.byRestaurant[o.RestaurantID] = append(b.byRestaurant[o.RestaurantID], o.ID)
}

// Remove deletes an order from the board.
func (b *Board) Remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o := b.orders[id]
	if o == nil {
		return
	}
	b.removeFromIndex(o.RestaurantID, id)
	delete(b.orders, id)
}

// Get retrieves an order by ID.
func (b *Board) Get(id uuid.UUID) *order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.orders[id]
}

// GetByRestaurant returns the open orders for one restaurant, oldest
// first so the display queues work in arrival order.
func (b *Board) GetByRestaurant(restaurantID uuid.UUID) []*order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := b.byRestaurant[restaurantID]
	result := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		if o := b.orders[id]; o != nil {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// GetAll returns every order on the board.
func (b *Board) GetAll() []*order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*order.Order, 0, len(b.orders))
	for _, o := range b.orders {
		result = append(result, o)
	}
	return result
}

// Count returns the number of orders on the board.
func (b *Board) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

func (b *Board) removeFromIndex(restaurantID, orderID uuid.UUID) {
	ids := b.byRestaurant[restaurantID]
	for i, id := range ids {
		if id == orderID {
			b.byRestaurant[restaurantID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}
