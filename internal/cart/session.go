// Package cart holds the session-scoped shopper cart. Each browsing session
// owns one Session: anonymous shoppers accumulate items locally, and logging
// in folds the local items into the server cart exactly once.
package cart

import (
	"context"
	"errors"
	"sync"

	"eklart/internal/model"
	"eklart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session is one shopper's cart for the lifetime of a browsing session.
// While anonymous, items live only in the session; after Login the server
// cart is the source of truth and every mutation goes through CartService.
//
// A Session is safe for concurrent use.
type Session struct {
	svc    service.CartService
	logger zerolog.Logger

	mu      sync.Mutex
	shopper uuid.UUID // uuid.Nil while anonymous
	local   []model.CartItemInput
	view    *model.CartView
}

// NewSession creates an anonymous cart session.
func NewSession(svc service.CartService, logger zerolog.Logger) *Session {
	return &Session{
		svc:    svc,
		logger: logger.With().Str("component", "cart-session").Logger(),
	}
}

// IsAnonymous reports whether the session has not logged in yet.
func (s *Session) IsAnonymous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shopper == uuid.Nil
}

// LocalItems returns a copy of the locally-held items. Empty once logged in.
func (s *Session) LocalItems() []model.CartItemInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.CartItemInput, len(s.local))
	copy(items, s.local)
	return items
}

// View returns the last authoritative server cart view, or nil while
// anonymous.
func (s *Session) View() *model.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// AddItem puts quantity units of an article into the cart, accumulating
// with any quantity already there.
func (s *Session) AddItem(ctx context.Context, articleID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shopper == uuid.Nil {
		for i := range s.local {
			if s.local[i].ArticleID == articleID {
				s.local[i].Quantity += quantity
				return nil
			}
		}
		s.local = append(s.local, model.CartItemInput{ArticleID: articleID, Quantity: quantity})
		return nil
	}

	view, err := s.svc.Add(ctx, s.shopper, articleID, quantity)
	if err != nil {
		return s.syncError(ctx, err)
	}
	s.view = view
	return nil
}

// UpdateQuantity sets an article's quantity directly. A quantity of zero or
// less removes the article.
func (s *Session) UpdateQuantity(ctx context.Context, articleID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shopper == uuid.Nil {
		if quantity <= 0 {
			return s.removeLocal(articleID)
		}
		for i := range s.local {
			if s.local[i].ArticleID == articleID {
				s.local[i].Quantity = quantity
				return nil
			}
		}
		return model.ErrCartItemNotFound
	}

	view, err := s.svc.UpdateQuantity(ctx, s.shopper, articleID, quantity)
	if err != nil {
		return s.syncError(ctx, err)
	}
	s.view = view
	return nil
}

// RemoveItem deletes one article from the cart.
func (s *Session) RemoveItem(ctx context.Context, articleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shopper == uuid.Nil {
		return s.removeLocal(articleID)
	}

	view, err := s.svc.Remove(ctx, s.shopper, articleID)
	if err != nil {
		return s.syncError(ctx, err)
	}
	s.view = view
	return nil
}

// Clear empties the cart.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shopper == uuid.Nil {
		s.local = nil
		return nil
	}

	if err := s.svc.Clear(ctx, s.shopper); err != nil {
		return s.syncError(ctx, err)
	}
	s.view = &model.CartView{Lines: []model.CartLine{}}
	return nil
}

// Refresh re-fetches the authoritative server cart. No-op while anonymous.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Login binds the session to an authenticated shopper and reconciles the
// locally-held items into the server cart. The merge is additive per
// article and runs exactly once: on success the local list is cleared and
// the server view becomes the source of truth. On failure the local items
// are kept for a retry and the session falls back to a best-effort refresh.
func (s *Session) Login(ctx context.Context, shopperID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shopper = shopperID

	if len(s.local) == 0 {
		return s.refreshLocked(ctx)
	}

	view, err := s.svc.Merge(ctx, shopperID, s.local)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("shopper_id", shopperID.String()).
			Int("local_count", len(s.local)).
			Msg("cart merge failed, keeping local items")

		if refreshErr := s.refreshLocked(ctx); refreshErr != nil {
			s.logger.Warn().Err(refreshErr).Msg("refresh after failed merge also failed")
		}

		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return domainErr
		}
		return model.ErrCartSync
	}

	s.local = nil
	s.view = view

	s.logger.Info().
		Str("shopper_id", shopperID.String()).
		Int("line_count", len(view.Lines)).
		Msg("local cart merged on login")

	return nil
}

// Close tears the session down. The local list is discarded; the server
// cart, if any, is untouched.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shopper = uuid.Nil
	s.local = nil
	s.view = nil
}

func (s *Session) removeLocal(articleID uuid.UUID) error {
	for i := range s.local {
		if s.local[i].ArticleID == articleID {
			s.local = append(s.local[:i], s.local[i+1:]...)
			return nil
		}
	}
	return model.ErrCartItemNotFound
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.shopper == uuid.Nil {
		return nil
	}

	view, err := s.svc.Get(ctx, s.shopper)
	if err != nil {
		return model.ErrCartSync
	}
	s.view = view
	return nil
}

// syncError maps a failed server mutation to what the session surfaces:
// domain errors pass through untouched, anything else reverts the session
// to the authoritative server state and reports a sync failure.
func (s *Session) syncError(ctx context.Context, err error) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	if refreshErr := s.refreshLocked(ctx); refreshErr != nil {
		s.logger.Warn().Err(refreshErr).Msg("refresh after failed cart mutation also failed")
	}
	return model.ErrCartSync
}
