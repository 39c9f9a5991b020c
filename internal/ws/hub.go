package ws

import (
	"sync"

	"github.com/google/uuid"
)

// roomMessage is an internal struct for routing payloads to one
// restaurant's room
type roomMessage struct {
	RestaurantID uuid.UUID
	Payload      []byte
}

// Hub maintains the set of connected kitchen displays and broadcasts
// order events to them, one room per restaurant
type Hub struct {
	// Registered clients by restaurant ID
	rooms map[uuid.UUID]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *roomMessage

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomMessage, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.restaurantID] == nil {
				h.rooms[client.restaurantID] = make(map[*Client]bool)
			}
			h.rooms[client.restaurantID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.restaurantID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.restaurantID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[msg.RestaurantID]

			for client := range clients {
				select {
				case client.send <- msg.Payload:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[msg.RestaurantID], client)
					if len(h.rooms[msg.RestaurantID]) == 0 {
						delete(h.rooms, msg.RestaurantID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRestaurant sends a payload to all displays watching one
// restaurant
func (h *Hub) BroadcastToRestaurant(restaurantID uuid.UUID, payload []byte) {
	h.broadcast <- &roomMessage{
		RestaurantID: restaurantID,
		Payload:      payload,
	}
}

// BroadcastToRoom routes a payload by restaurant ID string. Invalid IDs
// are dropped. This is the surface the event subscriber uses.
func (h *Hub) BroadcastToRoom(room string, message []byte) {
	restaurantID, err := uuid.Parse(room)
	if err != nil {
		return
	}
	h.BroadcastToRestaurant(restaurantID, message)
}
