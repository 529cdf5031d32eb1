package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPriority controls how prominently a notification is shown.
type NotificationPriority string

const (
	PriorityInfo      NotificationPriority = "info"
	PriorityWarning   NotificationPriority = "warning"
	PriorityImportant NotificationPriority = "important"
)

// Notification is an admin-sent message, either broadcast to everyone or
// addressed to a single profile.
type Notification struct {
	ID          uuid.UUID            `json:"id"`
	ProfileID   *uuid.UUID           `json:"profile_id,omitempty"` // nil = broadcast
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	Priority    NotificationPriority `json:"priority"`
	IsBroadcast bool                 `json:"is_broadcast"`
	IsRead      bool                 `json:"is_read"`
	CreatedBy   *uuid.UUID           `json:"created_by,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}
