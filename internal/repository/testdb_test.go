package repository

import (
	"context"
	"testing"
	"time"

	"eklart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := NewPool(ctx, connStr, DefaultPoolOptions())
	require.NoError(t, err)

	// Create schema
	createSchema(t, pool)

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema creates the necessary database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			price DECIMAL(12,2) NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL CHECK (stock >= 0),
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			article_id UUID NOT NULL REFERENCES articles(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, article_id)
		);

		CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES clients(id),
			order_number TEXT NOT NULL UNIQUE,
			order_date TIMESTAMPTZ NOT NULL,
			total_amount DECIMAL(12,2) NOT NULL,
			status TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			promo_code TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_lines (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			article_id UUID NOT NULL REFERENCES articles(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DECIMAL(12,2) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id);
		CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// seedArticles inserts test articles into the database.
func seedArticles(t *testing.T, pool *pgxpool.Pool, articles []model.Article) {
	ctx := context.Background()

	query := `
		INSERT INTO articles (id, name, price, stock, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, a := range articles {
		_, err := pool.Exec(ctx, query, a.ID, a.Name, a.Price, a.Stock, a.Status, a.CreatedAt)
		require.NoError(t, err)
	}
}

// testArticle builds a published article with the given price and stock.
func testArticle(name string, price float64, stock int) model.Article {
	return model.Article{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		Status:    model.ArticleStatusPublished,
		CreatedAt: time.Now(),
	}
}

// seedClient inserts a buyer profile and returns its ID.
func seedClient(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	ctx := context.Background()

	clientID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO clients (id, user_id) VALUES ($1, $2)`,
		clientID, userID,
	)
	require.NoError(t, err)

	return clientID
}
