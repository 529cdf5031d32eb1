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

// WithdrawalServiceImpl implements ports.WithdrawalService.
type WithdrawalServiceImpl struct {
	withdrawalRepo ports.WithdrawalRepository
	profileRepo    ports.ProfileRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	withdrawalRepo ports.WithdrawalRepository,
	profileRepo ports.ProfileRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		withdrawalRepo: withdrawalRepo,
		profileRepo:    profileRepo,
		transactor:     transactor,
		log:            log,
	}
}

// Request debits the balance and records a pending withdrawal in one
// transaction, with the profile row locked so concurrent requests cannot
// overdraw.
func (s *WithdrawalServiceImpl) Request(ctx context.Context, req ports.WithdrawalRequest) (*domain.Withdrawal, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if strings.TrimSpace(req.BankName) == "" || strings.TrimSpace(req.AccountNumber) == "" || strings.TrimSpace(req.AccountName) == "" {
		return nil, apperror.Validation("bank name, account number and account name are required")
	}

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
	if profile.Balance < req.Amount {
		return nil, apperror.Validation("insufficient balance")
	}

	now := time.Now().UTC()
	withdrawal := &domain.Withdrawal{
		ID:            uuid.New(),
		ProfileID:     req.ProfileID,
		Amount:        req.Amount,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Status:        domain.WithdrawalStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.profileRepo.UpdateBalance(ctx, dbTx, profile.ID, profile.Balance-req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit balance: %w", err))
	}
	if err := s.withdrawalRepo.Create(ctx, dbTx, withdrawal); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", withdrawal.ID.String()).
		Str("profile_id", req.ProfileID.String()).
		Int64("amount", req.Amount).
		Msg("withdrawal requested")

	return withdrawal, nil
}

// ListByProfile returns the profile's withdrawal history, newest first.
func (s *WithdrawalServiceImpl) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	return withdrawals, nil
}
