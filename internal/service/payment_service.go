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

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	paymentRepo ports.PaymentRepository
	profileRepo ports.ProfileRepository
	feed        ports.FeedPublisher
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	paymentRepo ports.PaymentRepository,
	profileRepo ports.ProfileRepository,
	feed ports.FeedPublisher,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		profileRepo: profileRepo,
		feed:        feed,
		transactor:  transactor,
		log:         log,
	}
}

// Submit records a new transfer claim for admin review. Only one pending
// claim per profile is allowed at a time.
func (s *PaymentServiceImpl) Submit(ctx context.Context, req ports.SubmitPaymentRequest) (*domain.Payment, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	pending, err := s.paymentRepo.HasPending(ctx, req.ProfileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check pending: %w", err))
	}
	if pending {
		return nil, apperror.ErrPaymentAlreadyPending()
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:         uuid.New(),
		ProfileID:  req.ProfileID,
		Amount:     req.Amount,
		Status:     domain.PaymentStatusPending,
		ReceiptURL: req.ReceiptURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}

	s.publish(ctx, domain.ChangeInsert, payment)

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("profile_id", req.ProfileID.String()).
		Int64("amount", req.Amount).
		Msg("payment submitted for review")

	return payment, nil
}

// Latest returns the profile's most recent payment, nil if none exists.
func (s *PaymentServiceImpl) Latest(ctx context.Context, profileID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetLatestByProfile(ctx, profileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get latest payment: %w", err))
	}
	return payment, nil
}

// ListByProfile returns all the profile's payments, newest first.
func (s *PaymentServiceImpl) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}

// Acknowledge records that the owner dismissed a terminal status screen.
func (s *PaymentServiceImpl) Acknowledge(ctx context.Context, profileID, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil || payment.ProfileID != profileID {
		return apperror.ErrNotFound("payment")
	}
	if !payment.IsTerminal() {
		return apperror.ErrPaymentNotPending()
	}

	if err := s.paymentRepo.MarkAcknowledged(ctx, paymentID, profileID, time.Now().UTC()); err != nil {
		return apperror.InternalError(fmt.Errorf("mark acknowledged: %w", err))
	}
	return nil
}

// Review records an admin decision on a pending payment. Approval credits
// the claimed amount to the owner's balance inside the same transaction that
// flips the status, so the two can never diverge.
func (s *PaymentServiceImpl) Review(ctx context.Context, req ports.ReviewRequest) (*domain.Payment, error) {
	status := domain.PaymentStatusRejected
	if req.Approve {
		status = domain.PaymentStatusApproved
	}
	if !req.Approve && (req.Reason == nil || strings.TrimSpace(*req.Reason) == "") {
		return nil, apperror.ErrReasonRequired()
	}

	payment, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	if !payment.CanReview() {
		return nil, apperror.ErrPaymentNotPending()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	if err := s.paymentRepo.UpdateReview(ctx, dbTx, payment.ID, status, req.Reason, req.ReviewerID, now); err != nil {
		return nil, apperror.ErrPaymentNotPending()
	}

	var newBalance *int64
	if req.Approve {
		profile, err := s.profileRepo.GetByIDForUpdate(ctx, dbTx, payment.ProfileID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock profile: %w", err))
		}
		if profile == nil {
			return nil, apperror.ErrNotFound("profile")
		}
		updated := profile.Balance + payment.Amount
		if err := s.profileRepo.UpdateBalance(ctx, dbTx, profile.ID, updated); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit balance: %w", err))
		}
		newBalance = &updated
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	payment.Status = status
	payment.RejectionReason = req.Reason
	payment.ReviewedBy = &req.ReviewerID
	payment.ReviewedAt = &now
	payment.UpdatedAt = now

	// Post-commit: one UPDATE event carrying the payment and, on approval,
	// the new balance.
	event := domain.ChangeEvent{
		Kind:       domain.ChangeUpdate,
		Entity:     domain.EntityPayment,
		OwnerID:    payment.ProfileID,
		Payment:    payment,
		Balance:    newBalance,
		OccurredAt: now,
	}
	if err := s.feed.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("payment_id", payment.ID.String()).Msg("failed to publish review event")
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("reviewer_id", req.ReviewerID.String()).
		Str("status", string(status)).
		Msg("payment reviewed")

	return payment, nil
}

// ListForReview returns the paginated admin review queue.
func (s *PaymentServiceImpl) ListForReview(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	payments, total, err := s.paymentRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list payments: %w", err))
	}
	return payments, total, nil
}

func (s *PaymentServiceImpl) publish(ctx context.Context, kind domain.ChangeKind, payment *domain.Payment) {
	event := domain.ChangeEvent{
		Kind:       kind,
		Entity:     domain.EntityPayment,
		OwnerID:    payment.ProfileID,
		Payment:    payment,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.feed.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("payment_id", payment.ID.String()).Msg("failed to publish payment event")
	}
}
