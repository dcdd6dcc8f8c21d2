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

// CartHandler handles server-cart HTTP requests. Every mutation responds
// with the updated authoritative cart view.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// addRequest is the payload of POST /api/cart.
type addRequest struct {
	ArticleID uuid.UUID `json:"articleId"`
	Quantity  int       `json:"quantity"`
}

// updateRequest is the payload of PUT /api/cart/{articleID}.
type updateRequest struct {
	Quantity int `json:"quantity"`
}

// mergeRequest is the payload of POST /api/cart/merge.
type mergeRequest struct {
	Items []model.CartItemInput `json:"items"`
}

func (h *CartHandler) shopper(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.ShopperID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Add handles POST /api/cart requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	view, err := h.service.Add(r.Context(), userID, req.ArticleID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateQuantity handles PUT /api/cart/{articleID} requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request, articleID uuid.UUID) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), userID, articleID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Remove handles DELETE /api/cart/{articleID} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request, articleID uuid.UUID) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	view, err := h.service.Remove(r.Context(), userID, articleID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Clear handles DELETE /api/cart/clear requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), userID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, &model.CartView{Lines: []model.CartLine{}})
}

// Merge handles POST /api/cart/merge requests: the persistence half of the
// login-time cart reconciliation.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.shopper(w, r)
	if !ok {
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	view, err := h.service.Merge(r.Context(), userID, req.Items)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
