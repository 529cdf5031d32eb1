package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `id, profile_id, amount, status, receipt_url, rejection_reason,
	reviewed_by, reviewed_at, acknowledged_at, created_at, updated_at`

// Create inserts a new payment claim.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (id, profile_id, amount, status, receipt_url, rejection_reason,
		reviewed_by, reviewed_at, acknowledged_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.ProfileID, p.Amount, p.Status, p.ReceiptURL, p.RejectionReason,
		p.ReviewedBy, p.ReviewedAt, p.AcknowledgedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment by UUID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	return r.scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetLatestByProfile fetches the profile's most recent payment.
func (r *PaymentRepo) GetLatestByProfile(ctx context.Context, profileID uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE profile_id = $1
		ORDER BY created_at DESC LIMIT 1`, paymentColumns)
	return r.scanPayment(r.pool.QueryRow(ctx, query, profileID))
}

// HasPending checks whether the profile already has a payment under review.
func (r *PaymentRepo) HasPending(ctx context.Context, profileID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM payments WHERE profile_id = $1 AND status = 'pending')`

	var exists bool
	err := r.pool.QueryRow(ctx, query, profileID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending payment: %w", err)
	}
	return exists, nil
}

// ListByProfile fetches all payments for a profile, newest first.
func (r *PaymentRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE profile_id = $1
		ORDER BY created_at DESC`, paymentColumns)

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list payments by profile: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// List fetches payments for the admin review queue with filtering and
// pagination.
func (r *PaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payments %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM payments %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, paymentColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// UpdateReview records an admin decision within a database transaction. The
// status guard in the WHERE clause keeps a terminal payment terminal even if
// two reviewers race.
func (r *PaymentRepo) UpdateReview(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, reason *string, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	query := `UPDATE payments SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, reason, reviewedBy, reviewedAt, id)
	if err != nil {
		return fmt.Errorf("update payment review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not pending: %s", id)
	}
	return nil
}

// MarkAcknowledged records that the owner dismissed the terminal status. The
// profile guard keeps one user from acknowledging another's payment.
func (r *PaymentRepo) MarkAcknowledged(ctx context.Context, id uuid.UUID, profileID uuid.UUID, at time.Time) error {
	query := `UPDATE payments SET acknowledged_at = $1, updated_at = NOW()
		WHERE id = $2 AND profile_id = $3 AND status IN ('approved', 'rejected')`

	tag, err := r.pool.Exec(ctx, query, at, id, profileID)
	if err != nil {
		return fmt.Errorf("mark payment acknowledged: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// CountsByStatus retrieves per-status totals for the admin dashboard.
func (r *PaymentRepo) CountsByStatus(ctx context.Context) (*ports.PaymentCounts, error) {
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM payments`

	counts := &ports.PaymentCounts{}
	err := r.pool.QueryRow(ctx, query).Scan(&counts.Pending, &counts.Approved, &counts.Rejected)
	if err != nil {
		return nil, fmt.Errorf("count payments by status: %w", err)
	}
	return counts, nil
}

func (r *PaymentRepo) collect(rows pgx.Rows) ([]domain.Payment, error) {
	var payments []domain.Payment
	for rows.Next() {
		p := domain.Payment{}
		err := rows.Scan(
			&p.ID, &p.ProfileID, &p.Amount, &p.Status, &p.ReceiptURL, &p.RejectionReason,
			&p.ReviewedBy, &p.ReviewedAt, &p.AcknowledgedAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}

// scanPayment is a helper to scan a single row into a Payment.
func (r *PaymentRepo) scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.ProfileID, &p.Amount, &p.Status, &p.ReceiptURL, &p.RejectionReason,
		&p.ReviewedBy, &p.ReviewedAt, &p.AcknowledgedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}
