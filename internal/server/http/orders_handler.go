package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req domain.OrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
}

type OrdersHandler struct {
	orders OrderService
	placed func()
	logger *zap.Logger
}

// NewOrdersHandler takes onPlaced, called once per accepted order; it may be nil.
func NewOrdersHandler(orders OrderService, onPlaced func(), logger *zap.Logger) *OrdersHandler {
	if onPlaced == nil {
		onPlaced = func() {}
	}
	return &OrdersHandler{orders: orders, placed: onPlaced, logger: logger}
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.placed()
	respondJSON(w, http.StatusCreated, order.Confirmation())
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), userIDFromContext(r.Context()), orderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order.Confirmation())
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	out := make([]domain.OrderConfirmation, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Confirmation())
	}
	respondJSON(w, http.StatusOK, out)
}
