package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"

	"github.com/google/uuid"
)

// MessageServiceImpl implements ports.MessageService.
type MessageServiceImpl struct {
	messageRepo ports.MessageRepository
}

// NewMessageService creates a new MessageServiceImpl.
func NewMessageService(messageRepo ports.MessageRepository) *MessageServiceImpl {
	return &MessageServiceImpl{messageRepo: messageRepo}
}

// Post creates a message, global or addressed to one profile.
func (s *MessageServiceImpl) Post(ctx context.Context, req ports.PostMessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, apperror.Validation("subject and body are required")
	}

	m := &domain.Message{
		ID:        uuid.New(),
		ProfileID: req.ProfileID,
		Subject:   req.Subject,
		Body:      req.Body,
		SentBy:    &req.SentBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, m); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create message: %w", err))
	}
	return m, nil
}

// ListVisible returns the messages a profile can see.
func (s *MessageServiceImpl) ListVisible(ctx context.Context, profileID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListVisible(ctx, profileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list messages: %w", err))
	}
	return messages, nil
}
