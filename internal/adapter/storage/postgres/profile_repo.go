package postgres

import (
	"context"
	"errors"
	"fmt"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, email, password_hash, full_name, balance, referral_code, referral_count,
	role, status, ban_reason, created_at, updated_at`

// Create inserts a new profile into the database.
func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (id, email, password_hash, full_name, balance, referral_code, referral_count,
		role, status, ban_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Email, p.PasswordHash, p.FullName, p.Balance,
		p.ReferralCode, p.ReferralCount, p.Role, p.Status, p.BanReason,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID fetches a profile by its UUID (without locking).
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	return r.scanProfile(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a profile by email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email = $1`, profileColumns)
	return r.scanProfile(r.pool.QueryRow(ctx, query, email))
}

// GetByIDForUpdate fetches a profile by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *ProfileRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1 FOR UPDATE`, profileColumns)
	return r.scanProfile(tx.QueryRow(ctx, query, id))
}

// UpdateBalance sets a profile's balance within a transaction.
func (r *ProfileRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	query := `UPDATE profiles SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update profile balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %s", id)
	}
	return nil
}

// UpdateStatus bans or reactivates an account.
func (r *ProfileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProfileStatus, banReason *string) error {
	query := `UPDATE profiles SET status = $1, ban_reason = $2, updated_at = NOW() WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, status, banReason, id)
	if err != nil {
		return fmt.Errorf("update profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %s", id)
	}
	return nil
}

// List fetches profiles for the admin console, optionally filtered by an
// email/name substring.
func (r *ProfileRepo) List(ctx context.Context, search string) ([]domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles ORDER BY created_at DESC`, profileColumns)
	args := []any{}
	if search != "" {
		query = fmt.Sprintf(`SELECT %s FROM profiles
			WHERE email ILIKE $1 OR full_name ILIKE $1
			ORDER BY created_at DESC`, profileColumns)
		args = append(args, "%"+search+"%")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p := domain.Profile{}
		err := rows.Scan(
			&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Balance,
			&p.ReferralCode, &p.ReferralCount, &p.Role, &p.Status, &p.BanReason,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return profiles, nil
}

// Counts retrieves aggregate account numbers for the admin dashboard.
func (r *ProfileRepo) Counts(ctx context.Context) (*ports.ProfileCounts, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'banned') AS banned
		FROM profiles`

	counts := &ports.ProfileCounts{}
	err := r.pool.QueryRow(ctx, query).Scan(&counts.Total, &counts.Banned)
	if err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}
	return counts, nil
}

// scanProfile is a helper to scan a single row into a Profile.
func (r *ProfileRepo) scanProfile(row pgx.Row) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Balance,
		&p.ReferralCode, &p.ReferralCount, &p.Role, &p.Status, &p.BanReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}
