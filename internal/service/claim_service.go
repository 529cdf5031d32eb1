package service

import (
	"context"
	"fmt"
	"time"

	"zenfi-wallet/config"
	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ClaimServiceImpl implements ports.ClaimService.
type ClaimServiceImpl struct {
	profileRepo ports.ProfileRepository
	claimRepo   ports.ClaimRepository
	cooldown    ports.CooldownStore
	feed        ports.FeedPublisher
	transactor  ports.DBTransactor
	cfg         config.ClaimConfig
	log         zerolog.Logger
}

// NewClaimService creates a new ClaimServiceImpl.
func NewClaimService(
	profileRepo ports.ProfileRepository,
	claimRepo ports.ClaimRepository,
	cooldown ports.CooldownStore,
	feed ports.FeedPublisher,
	transactor ports.DBTransactor,
	cfg config.ClaimConfig,
	log zerolog.Logger,
) *ClaimServiceImpl {
	return &ClaimServiceImpl{
		profileRepo: profileRepo,
		claimRepo:   claimRepo,
		cooldown:    cooldown,
		feed:        feed,
		transactor:  transactor,
		cfg:         cfg,
		log:         log,
	}
}

// Claim credits the daily reward once per cooldown window. The client's
// idempotency key makes a retried request return the original credit instead
// of a second one, so the server balance moves at most once per key.
func (s *ClaimServiceImpl) Claim(ctx context.Context, req ports.ClaimRequest) (*ports.ClaimResult, error) {
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency key is required")
	}

	// Replayed request: return the original result.
	prior, err := s.claimRepo.GetByIdempotencyKey(ctx, req.ProfileID, req.IdempotencyKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
	}
	if prior != nil {
		profile, err := s.profileRepo.GetByID(ctx, req.ProfileID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load profile: %w", err))
		}
		if profile == nil {
			return nil, apperror.ErrNotFound("profile")
		}
		return &ports.ClaimResult{Claim: prior, NewBalance: profile.Balance}, nil
	}

	// The cooldown slot is the single gate: whichever request takes it wins,
	// a concurrent second device gets the cooldown error.
	key := domain.BuildClaimCooldownKey(req.ProfileID)
	acquired, err := s.cooldown.Acquire(ctx, key, s.cfg.Cooldown)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("acquire cooldown: %w", err))
	}
	if !acquired {
		return nil, apperror.ErrClaimCooldown()
	}

	result, err := s.credit(ctx, req)
	if err != nil {
		// The credit never happened, free the slot so the user can retry.
		if relErr := s.cooldown.Release(ctx, key); relErr != nil {
			s.log.Warn().Err(relErr).Str("key", key).Msg("failed to release claim cooldown")
		}
		return nil, err
	}

	return result, nil
}

func (s *ClaimServiceImpl) credit(ctx context.Context, req ports.ClaimRequest) (*ports.ClaimResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	profile, err := s.profileRepo.GetByIDForUpdate(ctx, dbTx, req.ProfileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("profile")
	}
	if profile.IsBanned() {
		reason := ""
		if profile.BanReason != nil {
			reason = *profile.BanReason
		}
		return nil, apperror.ErrAccountBanned(reason)
	}

	newBalance := profile.Balance + s.cfg.RewardAmount

	now := time.Now().UTC()
	claim := &domain.Claim{
		ID:             uuid.New(),
		ProfileID:      req.ProfileID,
		Amount:         s.cfg.RewardAmount,
		IdempotencyKey: req.IdempotencyKey,
		ClaimedAt:      now,
	}

	if err := s.profileRepo.UpdateBalance(ctx, dbTx, profile.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.claimRepo.Create(ctx, dbTx, claim); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create claim: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-commit: push the new balance onto the change feed (best-effort).
	event := domain.ChangeEvent{
		Kind:       domain.ChangeUpdate,
		Entity:     domain.EntityProfile,
		OwnerID:    profile.ID,
		Balance:    &newBalance,
		OccurredAt: now,
	}
	if err := s.feed.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("profile_id", profile.ID.String()).Msg("failed to publish balance change")
	}

	s.log.Info().
		Str("claim_id", claim.ID.String()).
		Str("profile_id", profile.ID.String()).
		Int64("amount", claim.Amount).
		Int64("new_balance", newBalance).
		Msg("daily reward claimed")

	return &ports.ClaimResult{Claim: claim, NewBalance: newBalance}, nil
}
