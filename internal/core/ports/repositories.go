package ports

import (
	"context"
	"time"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository defines persistence operations for user profiles.
// Methods accepting pgx.Tx are used inside transaction blocks for
// pessimistic locking of the balance.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Profile, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProfileStatus, banReason *string) error
	List(ctx context.Context, search string) ([]domain.Profile, error)
	Counts(ctx context.Context) (*ProfileCounts, error)
}

// ProfileCounts holds aggregate account numbers for the admin dashboard.
type ProfileCounts struct {
	Total  int64
	Banned int64
}

// PaymentRepository defines persistence operations for transfer claims.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetLatestByProfile(ctx context.Context, profileID uuid.UUID) (*domain.Payment, error)
	HasPending(ctx context.Context, profileID uuid.UUID) (bool, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Payment, error)
	List(ctx context.Context, params PaymentListParams) ([]domain.Payment, int64, error)
	UpdateReview(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, reason *string, reviewedBy uuid.UUID, reviewedAt time.Time) error
	MarkAcknowledged(ctx context.Context, id uuid.UUID, profileID uuid.UUID, at time.Time) error
	CountsByStatus(ctx context.Context) (*PaymentCounts, error)
}

// PaymentListParams holds filter + pagination for the admin review queue.
type PaymentListParams struct {
	Status   *domain.PaymentStatus
	Page     int
	PageSize int
}

// PaymentCounts holds per-status totals for the admin dashboard.
type PaymentCounts struct {
	Pending  int64
	Approved int64
	Rejected int64
}

// ClaimRepository defines persistence for daily reward claims.
type ClaimRepository interface {
	Create(ctx context.Context, tx pgx.Tx, claim *domain.Claim) error
	GetByIdempotencyKey(ctx context.Context, profileID uuid.UUID, key string) (*domain.Claim, error)
}

// WithdrawalRepository defines persistence for withdrawal requests. Create
// runs inside the transaction that debits the balance.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, withdrawal *domain.Withdrawal) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Withdrawal, error)
}

// NotificationRepository defines persistence for admin notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, profileID uuid.UUID) error
}

// MessageRepository defines persistence for community messages.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListVisible(ctx context.Context, profileID uuid.UUID) ([]domain.Message, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
