package postgres

import (
	"context"
	"errors"
	"fmt"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClaimRepo implements ports.ClaimRepository.
type ClaimRepo struct {
	pool Pool
}

// NewClaimRepo creates a new ClaimRepo.
func NewClaimRepo(pool Pool) *ClaimRepo {
	return &ClaimRepo{pool: pool}
}

// Create inserts a claim within the same transaction that credits the
// balance, so a crash never records one without the other.
func (r *ClaimRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Claim) error {
	query := `INSERT INTO claims (id, profile_id, amount, idempotency_key, claimed_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.ProfileID, c.Amount, c.IdempotencyKey, c.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches a prior claim with the given client key, so a
// retried request returns the first result instead of crediting twice.
func (r *ClaimRepo) GetByIdempotencyKey(ctx context.Context, profileID uuid.UUID, key string) (*domain.Claim, error) {
	query := `SELECT id, profile_id, amount, idempotency_key, claimed_at
		FROM claims WHERE profile_id = $1 AND idempotency_key = $2`

	c := &domain.Claim{}
	err := r.pool.QueryRow(ctx, query, profileID, key).Scan(
		&c.ID, &c.ProfileID, &c.Amount, &c.IdempotencyKey, &c.ClaimedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get claim by idempotency key: %w", err)
	}
	return c, nil
}
