package handler

import (
	"encoding/json"
	"net/http"

	"eklart/internal/middleware"
	"eklart/internal/model"
	"eklart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and order-history HTTP requests.
type OrderHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.CheckoutService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

func (h *OrderHandler) shopper(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.ShopperID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/orders requests: the checkout submission.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	receipt, err := h.service.PlaceOrder(r.Context(), userID, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("order_number", receipt.OrderNumber).
		Str("user_id", userID.String()).
		Msg("order created")

	writeJSON(w, http.StatusCreated, receipt)
}

// List handles GET /api/orders requests: the shopper's order history.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	summaries, err := h.service.ListOrders(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}
