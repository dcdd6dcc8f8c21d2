package service

import (
	"context"

	"eklart/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines the read path over the article catalogue.
type CatalogService interface {
	// List retrieves published articles with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Article, error)

	// GetByID retrieves a single article by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
}

// CartService defines the server-side cart store for authenticated
// shoppers. Every mutation returns the updated authoritative cart view.
type CartService interface {
	// Get retrieves the shopper's cart.
	Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error)

	// Add puts quantity units of an article into the cart, accumulating
	// with any quantity already there.
	Add(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*model.CartView, error)

	// UpdateQuantity sets an article's quantity directly. A quantity of
	// zero or less removes the article.
	UpdateQuantity(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*model.CartView, error)

	// Remove deletes one article from the cart.
	Remove(ctx context.Context, userID, articleID uuid.UUID) (*model.CartView, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID uuid.UUID) error

	// Merge folds an anonymous session's locally-held items into the
	// shopper's persisted cart, adding quantities for shared articles.
	Merge(ctx context.Context, userID uuid.UUID, items []model.CartItemInput) (*model.CartView, error)
}

// CheckoutService converts a non-empty cart into a durable order.
type CheckoutService interface {
	// PlaceOrder validates the shopper's cart against live stock, persists
	// the order with its lines, decrements stock and clears the cart as one
	// atomic transaction.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.OrderReceipt, error)

	// ListOrders retrieves the shopper's order history, newest first.
	ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderSummary, error)
}
