package repository

import (
	"context"

	"eklart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ArticleRepository defines read access to the catalogue plus the one stock
// mutation the checkout flow is allowed to make.
type ArticleRepository interface {
	// List retrieves published articles with pagination support.
	List(ctx context.Context, limit, offset int) ([]model.Article, error)

	// GetByID retrieves a single article by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error)

	// GetByIDs retrieves multiple articles by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Article, error)

	// GetByIDsTx retrieves multiple articles within the provided transaction,
	// so checkout observes price and stock at a consistent point.
	GetByIDsTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Article, error)

	// DecrementStock decrements an article's stock within the provided
	// transaction. It never drives stock negative: when fewer than quantity
	// units remain, no row is updated and model.ErrInsufficientStock is
	// returned.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

// CartRepository defines the persisted cart store for authenticated
// shoppers. At most one row exists per (user, article).
type CartRepository interface {
	// GetItems retrieves all cart items for a user.
	GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// GetItemsTx retrieves all cart items for a user within the provided
	// transaction.
	GetItemsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error)

	// AddItem increments the quantity of an existing (user, article) row or
	// inserts a new one.
	AddItem(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*model.CartItem, error)

	// SetQuantity sets the quantity of an existing row directly.
	// Returns model.ErrCartItemNotFound when the article is not in the cart.
	SetQuantity(ctx context.Context, userID, articleID uuid.UUID, quantity int) error

	// RemoveItem deletes one article from the cart.
	// Returns model.ErrCartItemNotFound when the article is not in the cart.
	RemoveItem(ctx context.Context, userID, articleID uuid.UUID) error

	// Clear deletes every cart item for a user.
	Clear(ctx context.Context, userID uuid.UUID) error

	// ClearTx deletes every cart item for a user within the provided
	// transaction.
	ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error

	// Merge folds locally-held items into the user's persisted cart as one
	// transaction: quantities are added for articles already present,
	// new rows are inserted otherwise.
	Merge(ctx context.Context, userID uuid.UUID, items []model.CartItemInput) error
}

// BuyerRepository defines access to buyer profiles.
type BuyerRepository interface {
	// GetByUserID retrieves the buyer profile for a user, or nil when none
	// exists yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Buyer, error)

	// GetOrCreate retrieves the buyer profile for a user within the provided
	// transaction, creating an empty one when the user has never checked
	// out before.
	GetOrCreate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Buyer, error)

	// UpdateShipping applies submitted shipping details to a buyer profile
	// within the provided transaction.
	UpdateShipping(ctx context.Context, tx pgx.Tx, buyerID uuid.UUID, details model.ShippingDetails) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts multiple order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error)

	// ListByClient retrieves a client's orders with their lines, newest
	// first.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, map[uuid.UUID][]model.OrderLine, error)
}
