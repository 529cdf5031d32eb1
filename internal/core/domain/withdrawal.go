package domain

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus represents the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusPaid     WithdrawalStatus = "paid"
	WithdrawalStatusDeclined WithdrawalStatus = "declined"
)

// Withdrawal represents a user's request to move balance to a bank account.
type Withdrawal struct {
	ID            uuid.UUID        `json:"id"`
	ProfileID     uuid.UUID        `json:"profile_id"`
	Amount        int64            `json:"amount"`
	BankName      string           `json:"bank_name"`
	AccountNumber string           `json:"account_number"`
	AccountName   string           `json:"account_name"`
	Status        WithdrawalStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
