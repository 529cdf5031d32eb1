// Package reconcile implements the client-side reconciliation model used by
// wallet consumers: a local cache for instant first paint, an optimistic
// balance ledger, a bounded-retry sync client, a change-feed reducer, and a
// terminal-status acknowledgement tracker. It is independent of any UI
// framework and of the server packages; transports plug in through small
// interfaces.
package reconcile

import "time"

// Status is the lifecycle state of a payment record as seen by the client.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal returns true for approved/rejected.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// PaymentRecord is the client-side view of a submitted transfer claim.
type PaymentRecord struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Amount          int64     `json:"amount"`
	Status          Status    `json:"status"`
	ReceiptURL      string    `json:"receipt_url,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PaymentPatch carries the changed fields of an UPDATE feed event. Nil
// fields are left untouched on merge so local-only optimistic fields are
// never discarded by a wholesale replace.
type PaymentPatch struct {
	Status          *Status    `json:"status,omitempty"`
	Amount          *int64     `json:"amount,omitempty"`
	ReceiptURL      *string    `json:"receipt_url,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Merge applies the patch to a copy of rec and returns it.
func (p PaymentPatch) Merge(rec PaymentRecord) PaymentRecord {
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.ReceiptURL != nil {
		rec.ReceiptURL = *p.ReceiptURL
	}
	if p.RejectionReason != nil {
		rec.RejectionReason = *p.RejectionReason
	}
	if p.UpdatedAt != nil {
		rec.UpdatedAt = *p.UpdatedAt
	}
	return rec
}
