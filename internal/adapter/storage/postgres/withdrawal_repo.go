package postgres

import (
	"context"
	"fmt"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create inserts a withdrawal request within the transaction that debits
// the balance.
func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (id, profile_id, amount, bank_name, account_number, account_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.ProfileID, w.Amount, w.BankName, w.AccountNumber,
		w.AccountName, w.Status, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

// ListByProfile fetches all withdrawal requests for a profile, newest first.
func (r *WithdrawalRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Withdrawal, error) {
	query := `SELECT id, profile_id, amount, bank_name, account_number, account_name, status, created_at, updated_at
		FROM withdrawals WHERE profile_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		w := domain.Withdrawal{}
		err := rows.Scan(
			&w.ID, &w.ProfileID, &w.Amount, &w.BankName, &w.AccountNumber,
			&w.AccountName, &w.Status, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal row: %w", err)
		}
		withdrawals = append(withdrawals, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawal rows: %w", err)
	}
	return withdrawals, nil
}
