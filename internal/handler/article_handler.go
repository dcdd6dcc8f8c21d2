package handler

import (
	"net/http"
	"strconv"

	"eklart/internal/model"
	"eklart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArticleHandler handles catalogue HTTP requests.
type ArticleHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(service service.CatalogService, logger zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		service: service,
		logger:  logger.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /api/articles requests with pagination.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid limit parameter", h.logger)
			return
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid offset parameter", h.logger)
			return
		}
	}

	articles, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, articles)
}

// GetByID handles GET /api/articles/{id} requests.
func (h *ArticleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	idStr := r.URL.Path[len("/api/articles/"):]
	if idStr == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "article ID is required", h.logger)
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid article ID format", h.logger)
		return
	}

	article, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, article)
}
