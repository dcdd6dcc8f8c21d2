package repository

import (
	"context"
	"fmt"
	"time"

	"eklart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// upsertCartItemQuery adds to the quantity of an existing (user, article)
// row or inserts a new one. The unique index on (user_id, article_id) is
// what makes repeated adds accumulate instead of duplicating rows.
const upsertCartItemQuery = `
	INSERT INTO cart_items (id, user_id, article_id, quantity, added_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, article_id)
	DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, added_at = EXCLUDED.added_at
	RETURNING id, user_id, article_id, quantity, added_at
`

const cartItemsQuery = `
	SELECT id, user_id, article_id, quantity, added_at
	FROM cart_items
	WHERE user_id = $1
	ORDER BY added_at, id
`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetItems retrieves all cart items for a user.
func (r *cartRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx, cartItemsQuery, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	return scanCartItems(rows, r.logger)
}

// GetItemsTx retrieves all cart items for a user within the provided transaction.
func (r *cartRepository) GetItemsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := tx.Query(ctx, cartItemsQuery, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart items in transaction")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	return scanCartItems(rows, r.logger)
}

// AddItem increments the quantity of an existing (user, article) row or
// inserts a new one.
func (r *cartRepository) AddItem(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*model.CartItem, error) {
	var item model.CartItem
	err := r.pool.QueryRow(ctx, upsertCartItemQuery, uuid.New(), userID, articleID, quantity, time.Now()).
		Scan(&item.ID, &item.UserID, &item.ArticleID, &item.Quantity, &item.AddedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("article_id", articleID.String()).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Str("article_id", articleID.String()).
		Int("quantity", item.Quantity).
		Msg("cart item added")

	return &item, nil
}

// SetQuantity sets the quantity of an existing row directly.
func (r *cartRepository) SetQuantity(ctx context.Context, userID, articleID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE user_id = $1 AND article_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, articleID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("article_id", articleID.String()).
			Msg("failed to set cart item quantity")
		return fmt.Errorf("failed to set cart item quantity: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// RemoveItem deletes one article from the cart.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, articleID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE user_id = $1 AND article_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, articleID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("article_id", articleID.String()).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// Clear deletes every cart item for a user.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// ClearTx deletes every cart item for a user within the provided transaction.
func (r *cartRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart in transaction")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// Merge folds locally-held items into the user's persisted cart as one
// transaction. Each item goes through the same additive upsert as AddItem,
// so articles already in the server cart accumulate and new ones are
// inserted, never duplicated.
func (r *cartRepository) Merge(ctx context.Context, userID uuid.UUID, items []model.CartItemInput) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin merge transaction")
		return fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO cart_items (id, user_id, article_id, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, article_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, added_at = EXCLUDED.added_at
	`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, uuid.New(), userID, item.ArticleID, item.Quantity, now)
	}

	results := tx.SendBatch(ctx, batch)

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().
				Err(err).
				Str("user_id", userID.String()).
				Str("article_id", items[i].ArticleID.String()).
				Msg("failed to merge cart item")
			return fmt.Errorf("failed to merge cart item: %w", err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to merge cart items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to commit merge transaction")
		return fmt.Errorf("failed to commit merge transaction: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Int("count", len(items)).
		Msg("cart merged")

	return nil
}

// scanCartItems collects cart item rows.
func scanCartItems(rows pgx.Rows, logger zerolog.Logger) ([]model.CartItem, error) {
	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(&item.ID, &item.UserID, &item.ArticleID, &item.Quantity, &item.AddedAt)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
