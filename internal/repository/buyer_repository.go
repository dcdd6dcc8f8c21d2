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

const buyerColumns = `id, user_id, first_name, last_name, email, phone, address, city, created_at, updated_at`

// buyerRepository implements the BuyerRepository interface using PostgreSQL.
type buyerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBuyerRepository creates a new PostgreSQL-backed buyer repository.
func NewBuyerRepository(pool *pgxpool.Pool, logger zerolog.Logger) BuyerRepository {
	return &buyerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "buyer").Logger(),
	}
}

// GetByUserID retrieves the buyer profile for a user, or nil when none
// exists yet.
func (r *buyerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Buyer, error) {
	query := `SELECT ` + buyerColumns + ` FROM clients WHERE user_id = $1`

	var b model.Buyer
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&b.ID, &b.UserID, &b.FirstName, &b.LastName, &b.Email, &b.Phone,
		&b.Address, &b.City, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query buyer profile")
		return nil, fmt.Errorf("failed to query buyer profile: %w", err)
	}

	return &b, nil
}

// GetOrCreate retrieves the buyer profile for a user within the provided
// transaction, creating an empty one on first checkout. The upsert keeps
// two simultaneous first checkouts from racing a duplicate profile.
func (r *buyerRepository) GetOrCreate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Buyer, error) {
	query := `
		INSERT INTO clients (id, user_id, first_name, last_name, email, phone, address, city, created_at, updated_at)
		VALUES ($1, $2, '', '', '', '', '', '', $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + buyerColumns

	var b model.Buyer
	err := tx.QueryRow(ctx, query, uuid.New(), userID, time.Now()).Scan(
		&b.ID, &b.UserID, &b.FirstName, &b.LastName, &b.Email, &b.Phone,
		&b.Address, &b.City, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get or create buyer profile")
		return nil, fmt.Errorf("failed to get or create buyer profile: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Str("client_id", b.ID.String()).
		Msg("buyer profile resolved")

	return &b, nil
}

// UpdateShipping applies submitted shipping details to a buyer profile
// within the provided transaction.
func (r *buyerRepository) UpdateShipping(ctx context.Context, tx pgx.Tx, buyerID uuid.UUID, details model.ShippingDetails) error {
	query := `
		UPDATE clients
		SET first_name = $2, last_name = $3, email = $4, phone = $5,
		    address = $6, city = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, buyerID,
		details.FirstName, details.LastName, details.Email, details.Phone,
		details.Address, details.City, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("client_id", buyerID.String()).Msg("failed to update shipping details")
		return fmt.Errorf("failed to update shipping details: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("buyer profile %s not found", buyerID)
	}

	return nil
}
