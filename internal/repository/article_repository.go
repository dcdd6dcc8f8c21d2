package repository

import (
	"context"
	"fmt"

	"eklart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// articleRepository implements the ArticleRepository interface using PostgreSQL.
type articleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewArticleRepository creates a new PostgreSQL-backed article repository.
func NewArticleRepository(pool *pgxpool.Pool, logger zerolog.Logger) ArticleRepository {
	return &articleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "article").Logger(),
	}
}

// List retrieves published articles with pagination support.
func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]model.Article, error) {
	query := `
		SELECT id, name, price, stock, status, created_at
		FROM articles
		WHERE status = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, model.ArticleStatusPublished, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query articles")
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows, r.logger)
}

// GetByID retrieves a single article by its ID.
func (r *articleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	query := `
		SELECT id, name, price, stock, status, created_at
		FROM articles
		WHERE id = $1
	`

	var a model.Article
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Price, &a.Stock, &a.Status, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("article_id", id.String()).Msg("article not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("article_id", id.String()).Msg("failed to query article")
		return nil, fmt.Errorf("failed to query article: %w", err)
	}

	return &a, nil
}

// GetByIDs retrieves multiple articles by their IDs.
func (r *articleRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Article, error) {
	if len(ids) == 0 {
		return []model.Article{}, nil
	}

	rows, err := r.pool.Query(ctx, articlesByIDsQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query articles by IDs")
		return nil, fmt.Errorf("failed to query articles by IDs: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows, r.logger)
}

// GetByIDsTx retrieves multiple articles within the provided transaction.
func (r *articleRepository) GetByIDsTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Article, error) {
	if len(ids) == 0 {
		return []model.Article{}, nil
	}

	rows, err := tx.Query(ctx, articlesByIDsQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query articles in transaction")
		return nil, fmt.Errorf("failed to query articles by IDs: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows, r.logger)
}

// DecrementStock decrements an article's stock within the provided
// transaction. The WHERE guard makes the check-and-decrement atomic: two
// concurrent checkouts of the last unit can both pass a prior read, but only
// one UPDATE will match.
func (r *articleRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	query := `
		UPDATE articles
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("article_id", id.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("article_id", id.String()).
			Int("quantity", quantity).
			Msg("stock decrement refused, not enough units remain")
		return model.ErrInsufficientStock
	}

	r.logger.Debug().
		Str("article_id", id.String()).
		Int("quantity", quantity).
		Msg("stock decremented")

	return nil
}

const articlesByIDsQuery = `
	SELECT id, name, price, stock, status, created_at
	FROM articles
	WHERE id = ANY($1)
	ORDER BY name
`

// scanArticles collects article rows, closing over the shared column order.
func scanArticles(rows pgx.Rows, logger zerolog.Logger) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		var a model.Article
		err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.Stock, &a.Status, &a.CreatedAt)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan article row")
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating article rows")
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, nil
}
