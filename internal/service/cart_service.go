package service

import (
	"context"
	"fmt"

	"eklart/internal/model"
	"eklart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService on top of the persisted cart store.
type cartService struct {
	cartRepo    repository.CartRepository
	articleRepo repository.ArticleRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	articleRepo repository.ArticleRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		articleRepo: articleRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the shopper's cart.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.buildView(ctx, items)
}

// Add puts quantity units of an article into the cart.
func (s *cartService) Add(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*model.CartView, error) {
	if quantity <= 0 {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("article_id", articleID.String()).
			Int("quantity", quantity).
			Msg("invalid quantity on add")
		return nil, model.ErrInvalidQuantity
	}

	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if article == nil {
		s.logger.Warn().Str("article_id", articleID.String()).Msg("add to cart for unknown article")
		return nil, model.ErrArticleNotFound
	}

	if _, err := s.cartRepo.AddItem(ctx, userID, articleID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("article_id", articleID.String()).
		Int("quantity", quantity).
		Msg("article added to cart")

	return s.Get(ctx, userID)
}

// UpdateQuantity sets an article's quantity directly. A quantity of zero or
// less removes the article.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*model.CartView, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, articleID)
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, articleID, quantity); err != nil {
		if domainErr, ok := err.(*model.DomainError); ok {
			return nil, domainErr
		}
		return nil, fmt.Errorf("failed to update cart quantity: %w", err)
	}

	return s.Get(ctx, userID)
}

// Remove deletes one article from the cart.
func (s *cartService) Remove(ctx context.Context, userID, articleID uuid.UUID) (*model.CartView, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, articleID); err != nil {
		if domainErr, ok := err.(*model.DomainError); ok {
			return nil, domainErr
		}
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("article_id", articleID.String()).
		Msg("article removed from cart")

	return s.Get(ctx, userID)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("cart cleared")

	return nil
}

// Merge folds an anonymous session's locally-held items into the shopper's
// persisted cart. Quantities are validated up front so a malformed item
// rejects the whole batch before anything is written.
func (s *cartService) Merge(ctx context.Context, userID uuid.UUID, items []model.CartItemInput) (*model.CartView, error) {
	if len(items) == 0 {
		return s.Get(ctx, userID)
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if !seen[item.ArticleID] {
			seen[item.ArticleID] = true
			ids = append(ids, item.ArticleID)
		}
	}

	articles, err := s.articleRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}
	if len(articles) != len(ids) {
		s.logger.Warn().
			Int("expected", len(ids)).
			Int("found", len(articles)).
			Msg("cart merge refers to unknown articles")
		return nil, model.ErrArticleNotFound
	}

	if err := s.cartRepo.Merge(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("count", len(items)).
		Msg("local cart merged into server cart")

	return s.Get(ctx, userID)
}

// buildView joins cart items with their articles' live name, price and
// stock.
func (s *cartService) buildView(ctx context.Context, items []model.CartItem) (*model.CartView, error) {
	view := &model.CartView{Lines: []model.CartLine{}}
	if len(items) == 0 {
		return view, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ArticleID
	}

	articles, err := s.articleRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build cart view: %w", err)
	}

	byID := make(map[uuid.UUID]model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	for _, item := range items {
		article, ok := byID[item.ArticleID]
		if !ok {
			// Article was removed from the catalogue; skip the stale line
			s.logger.Warn().
				Str("article_id", item.ArticleID.String()).
				Msg("cart item references missing article")
			continue
		}

		lineTotal := article.Price * float64(item.Quantity)
		view.Lines = append(view.Lines, model.CartLine{
			ArticleID: article.ID,
			Name:      article.Name,
			UnitPrice: article.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
			Stock:     article.Stock,
		})
		view.Subtotal += lineTotal
	}

	return view, nil
}
