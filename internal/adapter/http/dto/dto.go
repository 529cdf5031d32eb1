package dto

import (
	"time"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// RegisterRequest is the request body for account creation.
type RegisterRequest struct {
	Email        string  `json:"email" binding:"required,email,max=254"`
	Password     string  `json:"password" binding:"required,min=8,max=128"`
	FullName     *string `json:"full_name,omitempty" binding:"omitempty,max=100"`
	ReferralCode *string `json:"referral_code,omitempty" binding:"omitempty,safe_id,max=16"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response body for successful register/login.
type AuthResponse struct {
	Profile ProfileResponse `json:"profile"`
	Token   string          `json:"token"`
	Expiry  int64           `json:"expiry"` // Unix timestamp
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	FullName      *string `json:"full_name,omitempty"`
	Balance       int64   `json:"balance"`
	ReferralCode  string  `json:"referral_code"`
	ReferralCount int     `json:"referral_count"`
	Role          string  `json:"role"`
	Status        string  `json:"status"`
	BanReason     *string `json:"ban_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ClaimRequest is the request body for the daily reward claim.
type ClaimRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required,safe_id,max=64"`
}

// ClaimResponse is the response body for a successful (or replayed) claim.
type ClaimResponse struct {
	ClaimID   string `json:"claim_id"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	ClaimedAt string `json:"claimed_at"`
}

// SubmitPaymentRequest is the request body for a transfer claim.
type SubmitPaymentRequest struct {
	Amount     int64   `json:"amount" binding:"required,gt=0"`
	ReceiptURL *string `json:"receipt_url,omitempty" binding:"omitempty,safe_url,max=2048"`
}

// PaymentResponse is the wire view of a payment.
type PaymentResponse struct {
	ID              string  `json:"id"`
	ProfileID       string  `json:"profile_id"`
	Amount          int64   `json:"amount"`
	Status          string  `json:"status"`
	ReceiptURL      *string `json:"receipt_url,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	AcknowledgedAt  *string `json:"acknowledged_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// PaymentListResponse wraps the paginated admin review queue.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ReviewRequest is the admin decision body.
type ReviewRequest struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// SignUploadRequest is the request body for a signed receipt upload URL.
type SignUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,gt=0"`
}

// SignUploadResponse is the response body carrying the one-time PUT target.
type SignUploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}

// WithdrawalRequest is the request body for a withdrawal.
type WithdrawalRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,min=6,max=32"`
	AccountName   string `json:"account_name" binding:"required,max=100"`
}

// WithdrawalResponse is the wire view of a withdrawal.
type WithdrawalResponse struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// NotificationResponse is the wire view of a notification.
type NotificationResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	IsBroadcast bool   `json:"is_broadcast"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

// SendNotificationRequest is the admin body for broadcast or per-user sends.
type SendNotificationRequest struct {
	ProfileID *string `json:"profile_id,omitempty" binding:"omitempty,uuid"`
	Title     string  `json:"title" binding:"required,max=200"`
	Message   string  `json:"message" binding:"required,max=2000"`
	Priority  string  `json:"priority" binding:"required,oneof=info warning important"`
}

// MessageResponse is the wire view of a community message.
type MessageResponse struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// BanRequest is the admin body for suspending an account.
type BanRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// AdjustmentRequest is the admin body for a balance adjustment.
type AdjustmentRequest struct {
	ProfileID string `json:"profile_id" binding:"required,uuid"`
	Delta     int64  `json:"delta" binding:"required"`
}

// AdjustmentResponse carries the balance after an adjustment.
type AdjustmentResponse struct {
	ProfileID string `json:"profile_id"`
	Balance   int64  `json:"balance"`
}

// StatsResponse is the admin dashboard counters.
type StatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	PendingPayments  int64 `json:"pending_payments"`
	ApprovedPayments int64 `json:"approved_payments"`
	RejectedPayments int64 `json:"rejected_payments"`
	BannedAccounts   int64 `json:"banned_accounts"`
}

// ---- Domain -> DTO converters ----

// FromProfile converts a domain profile to its wire view.
func FromProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID.String(),
		Email:         p.Email,
		FullName:      p.FullName,
		Balance:       p.Balance,
		ReferralCode:  p.ReferralCode,
		ReferralCount: p.ReferralCount,
		Role:          string(p.Role),
		Status:        string(p.Status),
		BanReason:     p.BanReason,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromPayment converts a domain payment to its wire view.
func FromPayment(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID.String(),
		ProfileID:       p.ProfileID.String(),
		Amount:          p.Amount,
		Status:          string(p.Status),
		ReceiptURL:      p.ReceiptURL,
		RejectionReason: p.RejectionReason,
		ReviewedAt:      formatTimePtr(p.ReviewedAt),
		AcknowledgedAt:  formatTimePtr(p.AcknowledgedAt),
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// FromPayments converts a slice of payments.
func FromPayments(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, FromPayment(&payments[i]))
	}
	return out
}

// FromWithdrawal converts a domain withdrawal to its wire view.
func FromWithdrawal(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            w.ID.String(),
		Amount:        w.Amount,
		BankName:      w.BankName,
		AccountNumber: w.AccountNumber,
		AccountName:   w.AccountName,
		Status:        string(w.Status),
		CreatedAt:     w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromNotification converts a domain notification to its wire view.
func FromNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID.String(),
		Title:       n.Title,
		Message:     n.Message,
		Priority:    string(n.Priority),
		IsBroadcast: n.IsBroadcast,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromMessage converts a domain message to its wire view.
func FromMessage(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.String(),
		Subject:   m.Subject,
		Body:      m.Body,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ParseUUIDPtr parses an optional uuid string from a request body.
func ParseUUIDPtr(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
