package kitchen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/Dead-0User/digital-table-backend/pkg/event"
)

// Broadcaster pushes a raw event payload to every display watching a
// restaurant room. The websocket hub implements it.
type Broadcaster interface {
	BroadcastToRoom(room string, message []byte)
}

// OrderSubscriber keeps the kitchen board current by consuming order
// events and fanning them out to connected displays.
type OrderSubscriber struct {
	subscriber events.Subscriber
	board      *Board
	hub        Broadcaster
	logger     apt.Logger
}

func NewOrderSubscriber(sub events.Subscriber, board *Board, logger apt.Logger) *OrderSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &OrderSubscriber{
		subscriber: sub,
		board:      board,
		logger:     logger,
	}
}

// SetHub wires the websocket hub (called after initialization).
func (s *OrderSubscriber) SetHub(hub Broadcaster) {
	s.hub = hub
}

func (s *OrderSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting order subscriber", "topic", event.OrdersTopic)
	if s.board != nil {
		if err := s.board.Warm(ctx); err != nil {
			s.logger.Info("kitchen board warmup failed", "error", err)
		}
	}
	if s.subscriber == nil {
		return fmt.Errorf("order subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.OrdersTopic, s.handleEvent)
}

func (s *OrderSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.OrderEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Info("invalid order event", "error", err)
		return nil
	}

	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		s.logger.Info("invalid order id in event", "order_id", evt.OrderID)
		return nil
	}

	if s.board != nil {
		switch evt.EventType {
		case event.EventOrderPaid, event.EventOrderCancelled:
			s.board.Remove(orderID)
		default:
			if err := s.board.Refresh(ctx, orderID); err != nil {
				s.logger.Info("cannot refresh order on board", "order_id", orderID.String(), "error", err)
			}
		}
	}

	if s.hub != nil && evt.RestaurantID != "" {
		s.hub.BroadcastToRoom(evt.RestaurantID, msg)
	}

	s.logger.Debug("order event applied", "order_id", orderID.String(), "event_type", evt.EventType)
	return nil
}
