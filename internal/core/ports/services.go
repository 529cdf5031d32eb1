package ports

import (
	"context"
	"time"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(profileID uuid.UUID, role domain.ProfileRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	ProfileID uuid.UUID
	Role      domain.ProfileRole
}

// CooldownStore guards rate-limited actions such as the daily claim.
type CooldownStore interface {
	// Acquire atomically takes the cooldown slot if it is free.
	// Returns true if acquired, false if the cooldown is still active.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees the slot early, used when the guarded action fails.
	Release(ctx context.Context, key string) error
	// Remaining reports how long until the slot frees up (0 if free).
	Remaining(ctx context.Context, key string) (time.Duration, error)
}

// FeedPublisher pushes change events onto the per-owner realtime channel.
type FeedPublisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
}

// --- Service Ports (Business Logic) ---

// AuthService defines sign-up/sign-in business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// RegisterRequest holds validated input for account creation.
type RegisterRequest struct {
	Email        string
	Password     string
	FullName     *string
	ReferralCode *string
}

// AuthResult holds the session issued after register/login.
type AuthResult struct {
	Profile *domain.Profile
	Token   string
	Expiry  time.Time
}

// ClaimService defines the daily reward claim.
type ClaimService interface {
	Claim(ctx context.Context, req ClaimRequest) (*ClaimResult, error)
}

// ClaimRequest holds validated input for a claim. The idempotency key is
// generated client-side so a retried write cannot credit twice.
type ClaimRequest struct {
	ProfileID      uuid.UUID
	IdempotencyKey string
}

// ClaimResult holds the credited claim and the resulting balance.
type ClaimResult struct {
	Claim      *domain.Claim
	NewBalance int64
}

// PaymentService defines transfer-claim submission, review, and
// acknowledgement.
type PaymentService interface {
	Submit(ctx context.Context, req SubmitPaymentRequest) (*domain.Payment, error)
	Latest(ctx context.Context, profileID uuid.UUID) (*domain.Payment, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Payment, error)
	Acknowledge(ctx context.Context, profileID, paymentID uuid.UUID) error
	Review(ctx context.Context, req ReviewRequest) (*domain.Payment, error)
	ListForReview(ctx context.Context, params PaymentListParams) ([]domain.Payment, int64, error)
}

// SubmitPaymentRequest holds validated input for a transfer claim.
type SubmitPaymentRequest struct {
	ProfileID  uuid.UUID
	Amount     int64
	ReceiptURL *string
}

// ReviewRequest holds an admin decision on a pending payment.
type ReviewRequest struct {
	PaymentID  uuid.UUID
	ReviewerID uuid.UUID
	Approve    bool
	Reason     *string // required on reject
}

// WithdrawalService defines withdrawal requests.
type WithdrawalService interface {
	Request(ctx context.Context, req WithdrawalRequest) (*domain.Withdrawal, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Withdrawal, error)
}

// WithdrawalRequest holds validated input for a withdrawal.
type WithdrawalRequest struct {
	ProfileID     uuid.UUID
	Amount        int64
	BankName      string
	AccountNumber string
	AccountName   string
}

// NotificationService defines admin messaging to users.
type NotificationService interface {
	Broadcast(ctx context.Context, req SendNotificationRequest) (*domain.Notification, error)
	SendToUser(ctx context.Context, req SendNotificationRequest) (*domain.Notification, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, profileID uuid.UUID) error
}

// SendNotificationRequest holds input for a notification send.
type SendNotificationRequest struct {
	ProfileID *uuid.UUID // nil = broadcast
	Title     string
	Message   string
	Priority  domain.NotificationPriority
	CreatedBy uuid.UUID
}

// MessageService defines community/announcement posts.
type MessageService interface {
	Post(ctx context.Context, req PostMessageRequest) (*domain.Message, error)
	ListVisible(ctx context.Context, profileID uuid.UUID) ([]domain.Message, error)
}

// PostMessageRequest holds input for an admin message post.
type PostMessageRequest struct {
	ProfileID *uuid.UUID // nil = visible to all
	Subject   string
	Body      string
	SentBy    uuid.UUID
}

// AdminService defines console operations over accounts and balances.
type AdminService interface {
	Stats(ctx context.Context) (*AdminStats, error)
	ListUsers(ctx context.Context, search string) ([]domain.Profile, error)
	Ban(ctx context.Context, profileID uuid.UUID, reason string, adminID uuid.UUID) error
	Unban(ctx context.Context, profileID uuid.UUID, adminID uuid.UUID) error
	Adjust(ctx context.Context, req AdjustmentRequest) (int64, error)
}

// AdminStats aggregates the dashboard counters.
type AdminStats struct {
	TotalUsers       int64
	PendingPayments  int64
	ApprovedPayments int64
	RejectedPayments int64
	BannedAccounts   int64
}

// AdjustmentRequest holds an admin-granted balance change (may be negative).
type AdjustmentRequest struct {
	ProfileID uuid.UUID
	Delta     int64
	AdminID   uuid.UUID
}

// UploadService issues and verifies signed receipt-upload URLs. It plays the
// role of the serverless signing endpoint plus blob-store verification.
type UploadService interface {
	SignUpload(req SignUploadRequest) (*SignedUpload, error)
	VerifyUpload(objectPath string, expiresAt int64, signature string) error
}

// SignUploadRequest holds the filename/content-type to sign.
type SignUploadRequest struct {
	ProfileID   uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
}

// SignedUpload holds the one-time PUT target and the durable public URL.
type SignedUpload struct {
	UploadURL string
	PublicURL string
	ExpiresAt time.Time
}
