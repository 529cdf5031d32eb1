package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the lifecycle state of a submitted transfer claim.
// The only legal transition is pending -> approved|rejected; terminal states
// never change.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment represents a user's claimed bank transfer awaiting admin review.
// Payments are never deleted, only superseded by a newer record.
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	ProfileID       uuid.UUID     `json:"profile_id"`
	Amount          int64         `json:"amount"`
	Status          PaymentStatus `json:"status"`
	ReceiptURL      *string       `json:"receipt_url,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time    `json:"reviewed_at,omitempty"`
	AcknowledgedAt  *time.Time    `json:"acknowledged_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsTerminal returns true if the payment reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusApproved || p.Status == PaymentStatusRejected
}

// CanReview returns true if an admin decision may still be recorded.
func (p *Payment) CanReview() bool {
	return p.Status == PaymentStatusPending
}
