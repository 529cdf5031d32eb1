package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a community/announcement post shown in the in-app feed.
type Message struct {
	ID        uuid.UUID  `json:"id"`
	ProfileID *uuid.UUID `json:"profile_id,omitempty"` // nil = visible to all
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	SentBy    *uuid.UUID `json:"sent_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
