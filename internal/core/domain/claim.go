package domain

import (
	"time"

	"github.com/google/uuid"
)

// Claim represents a single daily-reward credit to a profile balance.
type Claim struct {
	ID             uuid.UUID `json:"id"`
	ProfileID      uuid.UUID `json:"profile_id"`
	Amount         int64     `json:"amount"`
	IdempotencyKey string    `json:"idempotency_key"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

// BuildClaimCooldownKey constructs the redis key guarding the daily claim.
func BuildClaimCooldownKey(profileID uuid.UUID) string {
	return "claim:cooldown:" + profileID.String()
}
