package kitchen

import (
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler serves the kitchen display read model straight from the board.
type Handler struct {
	logger apt.Logger
	tlm    *telemetry.HTTP
	board  *Board
}

func NewHandler(board *Board, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger: logger,
		tlm:    telemetry.NewHTTP(),
		board:  board,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kitchen", func(r chi.Router) {
		r.Get("/orders", h.ListOpenOrders)
	})
}

func (h *Handler) ListOpenOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOpenOrders")
	defer finish()

	log := h.logger.With("request_id", r.Context().Value("request_id"))

	restaurantIDStr := r.URL.Query().Get("restaurant_id")
	if restaurantIDStr == "" {
		log.Debug("missing restaurant_id parameter")
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	restaurantID, err := uuid.Parse(restaurantIDStr)
	if err != nil {
		log.Debug("invalid restaurant_id parameter", "restaurant_id", restaurantIDStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid restaurant_id parameter")
		return
	}

	orders := h.board.GetByRestaurant(restaurantID)
	apt.RespondCollection(w, orders, "order")
}
