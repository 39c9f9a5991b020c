package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// OrderService is the surface the HTTP layer needs from the ordering core.
type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, items []ItemSubmission, actor string) (*Order, error)
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, batchIDs []string) (*Order, error)
	SetItemStatus(ctx context.Context, orderID, lineID uuid.UUID, status string) (*Order, error)
	SetItemsStatusBulk(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID, status string) (*Order, error)
	RecordPayment(ctx context.Context, orderID uuid.UUID, method string) (*Order, error)
	GenerateTicket(ctx context.Context, orderID uuid.UUID, printedBy string) (*Ticket, error)
	MarkSeen(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context) ([]*Order, error)
	ListOrdersByTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]*Order, error)
}

type Handler struct {
	logger apt.Logger
	tlm    *telemetry.HTTP
	svc    OrderService
}

func NewHandler(svc OrderService, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger: logger,
		tlm:    telemetry.NewHTTP(),
		svc:    svc,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/items", h.UpdateOrderItems)
		r.Patch("/{id}/status", h.UpdateOrderStatus)
		r.Post("/{id}/items/status", h.UpdateItemsStatusBulk)
		r.Post("/{id}/payment", h.RecordPayment)
		r.Post("/{id}/kot", h.GenerateTicket)
		r.Post("/{id}/seen", h.MarkSeen)

		r.Patch("/{orderID}/items/{itemID}/status", h.UpdateItemStatus)
	})
}

// Order Handlers

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req OrderCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.svc.PlaceOrder(ctx, PlaceOrderInput{
		TableID:      req.TableID,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
		Items:        req.Items,
	})
	if err != nil {
		h.respondServiceError(w, log, "cannot create order", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(ctx, id)
	if err != nil {
		h.respondServiceError(w, log, "cannot load order", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	tableIDStr := r.URL.Query().Get("table_id")
	status := r.URL.Query().Get("status")

	var orders []*Order
	var err error

	if tableIDStr != "" {
		tableID, parseErr := uuid.Parse(tableIDStr)
		if parseErr != nil {
			log.Debug("invalid table_id parameter", "table_id", tableIDStr)
			apt.RespondError(w, http.StatusBadRequest, "Invalid table_id parameter")
			return
		}
		orders, err = h.svc.ListOrdersByTable(ctx, tableID)
	} else if status != "" {
		orders, err = h.svc.ListOrdersByStatus(ctx, status)
	} else {
		orders, err = h.svc.ListOrders(ctx)
	}

	if err != nil {
		log.Error("error retrieving orders", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	apt.RespondCollection(w, orders, "order")
}

// UpdateOrderItems replaces the submitted item list: the desired state is
// reconciled against the live lines, it is not a patch.
func (h *Handler) UpdateOrderItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderItems")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req OrderItemsUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}
	if req.Actor == "" {
		req.Actor = ActorCustomer
	}

	order, err := h.svc.UpdateOrder(ctx, id, req.Items, req.Actor)
	if err != nil {
		h.respondServiceError(w, log, "cannot update order items", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.svc.SetOrderStatus(ctx, id, req.Status, req.BatchIDs)
	if err != nil {
		h.respondServiceError(w, log, "cannot update order status", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		log.Debug("invalid order ID", "orderID", chi.URLParam(r, "orderID"))
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		log.Debug("invalid item ID", "itemID", chi.URLParam(r, "itemID"))
		apt.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req ItemStatusRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.svc.SetItemStatus(ctx, orderID, itemID, req.Status)
	if err != nil {
		h.respondServiceError(w, log, "cannot update item status", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) UpdateItemsStatusBulk(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemsStatusBulk")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req ItemsStatusBulkRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.svc.SetItemsStatusBulk(ctx, id, req.ItemIDs, req.Status)
	if err != nil {
		h.respondServiceError(w, log, "cannot update item statuses", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RecordPayment")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req PaymentRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.svc.RecordPayment(ctx, id, req.Method)
	if err != nil {
		h.respondServiceError(w, log, "cannot record payment", err)
		return
	}

	log.Info("order paid", "order_id", id, "method", req.Method)
	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) GenerateTicket(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GenerateTicket")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TicketRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	ticket, err := h.svc.GenerateTicket(ctx, id, req.PrintedBy)
	if err != nil {
		h.respondServiceError(w, log, "cannot generate ticket", err)
		return
	}
	if ticket == nil {
		apt.Respond(w, http.StatusOK, map[string]any{"printed": false}, nil)
		return
	}

	log.Info("kitchen ticket generated", "order_id", id, "kot_number", ticket.KOTNumber)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, ticket)
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MarkSeen")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.svc.MarkSeen(ctx, id)
	if err != nil {
		h.respondServiceError(w, log, "cannot mark order seen", err)
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

// Helper methods

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, log apt.Logger, msg string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		log.Debug(msg, "error", err)
		apt.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotFound):
		log.Debug(msg, "error", err)
		apt.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		log.Info(msg, "error", err)
		apt.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrConfiguration):
		log.Error(msg, "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Service misconfigured")
	default:
		log.Error(msg, "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Internal error")
	}
}

// Payload decoders

type OrderCreateRequest struct {
	TableID      uuid.UUID        `json:"table_id"`
	CustomerName string           `json:"customer_name,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Items        []ItemSubmission `json:"items"`
}

type OrderItemsUpdateRequest struct {
	Items []ItemSubmission `json:"items"`
	Actor string           `json:"actor,omitempty"`
}

type OrderStatusRequest struct {
	Status   string   `json:"status"`
	BatchIDs []string `json:"batch_ids,omitempty"`
}

type ItemStatusRequest struct {
	Status string `json:"status"`
}

type ItemsStatusBulkRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
	Status  string      `json:"status"`
}

type PaymentRequest struct {
	Method string `json:"method"`
}

type TicketRequest struct {
	PrintedBy string `json:"printed_by,omitempty"`
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log apt.Logger, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
