package postgres

import (
	"context"
	"fmt"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// NotificationRepo implements ports.NotificationRepository.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Create inserts a notification (targeted or broadcast).
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, profile_id, title, message, priority, is_broadcast, is_read, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.ProfileID, n.Title, n.Message, n.Priority,
		n.IsBroadcast, n.IsRead, n.CreatedBy, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListForProfile fetches the notifications visible to a profile: broadcasts
// plus ones addressed to it, newest first.
func (r *NotificationRepo) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Notification, error) {
	query := `SELECT id, profile_id, title, message, priority, is_broadcast, is_read, created_by, created_at
		FROM notifications WHERE is_broadcast = TRUE OR profile_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n := domain.Notification{}
		err := rows.Scan(
			&n.ID, &n.ProfileID, &n.Title, &n.Message, &n.Priority,
			&n.IsBroadcast, &n.IsRead, &n.CreatedBy, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one notification as read for its addressee.
func (r *NotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, profileID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND (profile_id = $2 OR is_broadcast = TRUE)`

	tag, err := r.pool.Exec(ctx, query, id, profileID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}
	return nil
}
