package service

import (
	"context"
	"fmt"

	"eklart/internal/model"
	"eklart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	articleRepo repository.ArticleRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(articleRepo repository.ArticleRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		articleRepo: articleRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// List retrieves published articles with pagination.
func (s *catalogService) List(ctx context.Context, limit, offset int) ([]model.Article, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	articles, err := s.articleRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list articles")
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	s.logger.Debug().
		Int("count", len(articles)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved articles")

	return articles, nil
}

// GetByID retrieves a single article by ID.
func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("article_id", id.String()).Msg("failed to get article")
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	if article == nil {
		s.logger.Debug().Str("article_id", id.String()).Msg("article not found")
		return nil, model.ErrArticleNotFound
	}

	return article, nil
}
