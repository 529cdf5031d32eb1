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

// AdminServiceImpl implements ports.AdminService.
type AdminServiceImpl struct {
	profileRepo ports.ProfileRepository
	paymentRepo ports.PaymentRepository
	feed        ports.FeedPublisher
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(
	profileRepo ports.ProfileRepository,
	paymentRepo ports.PaymentRepository,
	feed ports.FeedPublisher,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		profileRepo: profileRepo,
		paymentRepo: paymentRepo,
		feed:        feed,
		transactor:  transactor,
		log:         log,
	}
}

// Stats aggregates the dashboard counters.
func (s *AdminServiceImpl) Stats(ctx context.Context) (*ports.AdminStats, error) {
	profiles, err := s.profileRepo.Counts(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("profile counts: %w", err))
	}
	payments, err := s.paymentRepo.CountsByStatus(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("payment counts: %w", err))
	}

	return &ports.AdminStats{
		TotalUsers:       profiles.Total,
		PendingPayments:  payments.Pending,
		ApprovedPayments: payments.Approved,
		RejectedPayments: payments.Rejected,
		BannedAccounts:   profiles.Banned,
	}, nil
}

// ListUsers returns profiles for the console, optionally filtered.
func (s *AdminServiceImpl) ListUsers(ctx context.Context, search string) ([]domain.Profile, error) {
	profiles, err := s.profileRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list profiles: %w", err))
	}
	return profiles, nil
}

// Ban suspends an account with a reason the user will see on next login.
func (s *AdminServiceImpl) Ban(ctx context.Context, profileID uuid.UUID, reason string, adminID uuid.UUID) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.ErrReasonRequired()
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load profile: %w", err))
	}
	if profile == nil {
		return apperror.ErrNotFound("profile")
	}
	if profile.IsAdmin() {
		return apperror.Validation("cannot ban an admin account")
	}

	if err := s.profileRepo.UpdateStatus(ctx, profileID, domain.ProfileStatusBanned, &reason); err != nil {
		return apperror.InternalError(fmt.Errorf("ban profile: %w", err))
	}

	s.log.Info().
		Str("profile_id", profileID.String()).
		Str("admin_id", adminID.String()).
		Str("reason", reason).
		Msg("account banned")

	return nil
}

// Unban reactivates a suspended account.
func (s *AdminServiceImpl) Unban(ctx context.Context, profileID uuid.UUID, adminID uuid.UUID) error {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load profile: %w", err))
	}
	if profile == nil {
		return apperror.ErrNotFound("profile")
	}

	if err := s.profileRepo.UpdateStatus(ctx, profileID, domain.ProfileStatusActive, nil); err != nil {
		return apperror.InternalError(fmt.Errorf("unban profile: %w", err))
	}

	s.log.Info().
		Str("profile_id", profileID.String()).
		Str("admin_id", adminID.String()).
		Msg("account reactivated")

	return nil
}

// Adjust applies an admin-granted balance change (positive or negative) and
// returns the resulting balance. The change rides the feed so an online
// client updates without a refresh.
func (s *AdminServiceImpl) Adjust(ctx context.Context, req ports.AdjustmentRequest) (int64, error) {
	if req.Delta == 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	profile, err := s.profileRepo.GetByIDForUpdate(ctx, dbTx, req.ProfileID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock profile: %w", err))
	}
	if profile == nil {
		return 0, apperror.ErrNotFound("profile")
	}

	newBalance := profile.Balance + req.Delta
	if newBalance < 0 {
		return 0, apperror.Validation("adjustment would make the balance negative")
	}

	if err := s.profileRepo.UpdateBalance(ctx, dbTx, profile.ID, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := time.Now().UTC()
	event := domain.ChangeEvent{
		Kind:       domain.ChangeUpdate,
		Entity:     domain.EntityProfile,
		OwnerID:    profile.ID,
		Balance:    &newBalance,
		OccurredAt: now,
	}
	if err := s.feed.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("profile_id", profile.ID.String()).Msg("failed to publish adjustment")
	}

	s.log.Info().
		Str("profile_id", profile.ID.String()).
		Str("admin_id", req.AdminID.String()).
		Int64("delta", req.Delta).
		Int64("new_balance", newBalance).
		Msg("balance adjusted")

	return newBalance, nil
}
