package postgres

import (
	"context"
	"fmt"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// MessageRepo implements ports.MessageRepository.
type MessageRepo struct {
	pool Pool
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(pool Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create inserts a message post.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `INSERT INTO messages (id, profile_id, subject, body, sent_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.ProfileID, m.Subject, m.Body, m.SentBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListVisible fetches the messages a profile can see: global posts plus ones
// addressed to it, newest first.
func (r *MessageRepo) ListVisible(ctx context.Context, profileID uuid.UUID) ([]domain.Message, error) {
	query := `SELECT id, profile_id, subject, body, sent_by, created_at
		FROM messages WHERE profile_id IS NULL OR profile_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m := domain.Message{}
		err := rows.Scan(&m.ID, &m.ProfileID, &m.Subject, &m.Body, &m.SentBy, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return messages, nil
}
