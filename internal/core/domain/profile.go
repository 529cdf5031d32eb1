package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProfileStatus represents the state of a user account.
type ProfileStatus string

const (
	ProfileStatusActive ProfileStatus = "active"
	ProfileStatusBanned ProfileStatus = "banned"
)

// ProfileRole distinguishes regular users from console staff.
type ProfileRole string

const (
	RoleUser  ProfileRole = "user"
	RoleAdmin ProfileRole = "admin"
)

// Profile represents a registered user with a wallet balance.
type Profile struct {
	ID            uuid.UUID     `json:"id"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"` // Never expose
	FullName      *string       `json:"full_name,omitempty"`
	Balance       int64         `json:"balance"` // whole naira
	ReferralCode  string        `json:"referral_code"`
	ReferralCount int           `json:"referral_count"`
	Role          ProfileRole   `json:"role"`
	Status        ProfileStatus `json:"status"`
	BanReason     *string       `json:"ban_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsBanned returns true if the account is suspended.
func (p *Profile) IsBanned() bool {
	return p.Status == ProfileStatusBanned
}

// IsAdmin returns true if the profile has console access.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
