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
	"github.com/rs/zerolog"
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	notifRepo   ports.NotificationRepository
	profileRepo ports.ProfileRepository
	log         zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(
	notifRepo ports.NotificationRepository,
	profileRepo ports.ProfileRepository,
	log zerolog.Logger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		notifRepo:   notifRepo,
		profileRepo: profileRepo,
		log:         log,
	}
}

// Broadcast sends a notification to every user.
func (s *NotificationServiceImpl) Broadcast(ctx context.Context, req ports.SendNotificationRequest) (*domain.Notification, error) {
	if err := validateNotification(req); err != nil {
		return nil, err
	}

	n := &domain.Notification{
		ID:          uuid.New(),
		Title:       req.Title,
		Message:     req.Message,
		Priority:    req.Priority,
		IsBroadcast: true,
		CreatedBy:   &req.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create notification: %w", err))
	}

	s.log.Info().
		Str("notification_id", n.ID.String()).
		Str("priority", string(n.Priority)).
		Msg("broadcast notification sent")

	return n, nil
}

// SendToUser sends a notification to one profile.
func (s *NotificationServiceImpl) SendToUser(ctx context.Context, req ports.SendNotificationRequest) (*domain.Notification, error) {
	if err := validateNotification(req); err != nil {
		return nil, err
	}
	if req.ProfileID == nil {
		return nil, apperror.Validation("profile id is required")
	}

	profile, err := s.profileRepo.GetByID(ctx, *req.ProfileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("profile")
	}

	n := &domain.Notification{
		ID:        uuid.New(),
		ProfileID: req.ProfileID,
		Title:     req.Title,
		Message:   req.Message,
		Priority:  req.Priority,
		CreatedBy: &req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create notification: %w", err))
	}

	return n, nil
}

// ListForProfile returns the notifications visible to a profile.
func (s *NotificationServiceImpl) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Notification, error) {
	notifications, err := s.notifRepo.ListForProfile(ctx, profileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	return notifications, nil
}

// MarkRead marks one notification as read.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id uuid.UUID, profileID uuid.UUID) error {
	if err := s.notifRepo.MarkRead(ctx, id, profileID); err != nil {
		return apperror.ErrNotFound("notification")
	}
	return nil
}

func validateNotification(req ports.SendNotificationRequest) error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return apperror.Validation("title and message are required")
	}
	switch req.Priority {
	case domain.PriorityInfo, domain.PriorityWarning, domain.PriorityImportant:
		return nil
	default:
		return apperror.Validation("priority must be info, warning, or important")
	}
}
