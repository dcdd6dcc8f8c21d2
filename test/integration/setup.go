// Package integration holds end-to-end tests that run the real repositories
// and services against a containerised PostgreSQL.
package integration

import (
	"context"
	"testing"
	"time"

	"eklart/internal/model"
	"eklart/internal/promo"
	"eklart/internal/repository"
	"eklart/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// shippingFee matches the production default flat fee.
const shippingFee = 2500.0

// testEnv wires real repositories and services to a containerised database.
type testEnv struct {
	Pool     *pgxpool.Pool
	Articles repository.ArticleRepository
	Carts    repository.CartRepository
	Buyers   repository.BuyerRepository
	Orders   repository.OrderRepository
	Catalog  service.CatalogService
	Cart     service.CartService
	Checkout service.CheckoutService
}

// setupEnv starts a PostgreSQL container, creates the schema and builds the
// full service stack on top of it.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()

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

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	logger := zerolog.Nop()

	articleRepo := repository.NewArticleRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	buyerRepo := repository.NewBuyerRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	return &testEnv{
		Pool:     pool,
		Articles: articleRepo,
		Carts:    cartRepo,
		Buyers:   buyerRepo,
		Orders:   orderRepo,
		Catalog:  service.NewCatalogService(articleRepo, logger),
		Cart:     service.NewCartService(cartRepo, articleRepo, logger),
		Checkout: service.NewCheckoutService(
			orderRepo, cartRepo, articleRepo, buyerRepo,
			promo.NewDisabledValidator(), shippingFee, logger,
		),
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

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

// seedArticle inserts one published article and returns it.
func seedArticle(t *testing.T, pool *pgxpool.Pool, name string, price float64, stock int) model.Article {
	t.Helper()

	article := model.Article{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		Status:    model.ArticleStatusPublished,
		CreatedAt: time.Now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO articles (id, name, price, stock, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		article.ID, article.Name, article.Price, article.Stock, article.Status, article.CreatedAt,
	)
	require.NoError(t, err)

	return article
}

// articleStock reads an article's current stock.
func articleStock(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock FROM articles WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

// countRows counts rows in a table.
func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&count)
	require.NoError(t, err)
	return count
}

// shippingDetails builds a filled checkout form.
func shippingDetails() model.ShippingDetails {
	return model.ShippingDetails{
		FirstName: "Awa",
		LastName:  "Diallo",
		Email:     "awa.diallo@example.com",
		Phone:     "+22990000001",
		Address:   "Rue 12, Quartier Zongo",
		City:      "Cotonou",
	}
}
