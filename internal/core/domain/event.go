package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind is the kind of record mutation carried on the change feed.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
)

// Change feed entity names.
const (
	EntityPayment = "payments"
	EntityProfile = "profiles"
)

// ChangeEvent is published on a per-owner channel whenever a payment or
// profile record is inserted or updated. Clients merge these into local
// state; delivery order follows server commit order.
type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	Entity     string     `json:"entity"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Payment    *Payment   `json:"payment,omitempty"`
	Balance    *int64     `json:"balance,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// FeedChannel returns the pub/sub channel name for one owner's records.
func FeedChannel(ownerID uuid.UUID) string {
	return "feed:" + ownerID.String()
}
