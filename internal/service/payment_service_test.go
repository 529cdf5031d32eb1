package service

import (
	"context"
	"testing"
	"time"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type paymentTestDeps struct {
	svc         *PaymentServiceImpl
	paymentRepo *mocks.MockPaymentRepository
	profileRepo *mocks.MockProfileRepository
	feed        *mocks.MockFeedPublisher
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupPaymentService(t *testing.T) *paymentTestDeps {
	ctrl := gomock.NewController(t)
	d := &paymentTestDeps{
		paymentRepo: mocks.NewMockPaymentRepository(ctrl),
		profileRepo: mocks.NewMockProfileRepository(ctrl),
		feed:        mocks.NewMockFeedPublisher(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewPaymentService(d.paymentRepo, d.profileRepo, d.feed, d.transactor, zerolog.Nop())
	return d
}

func pendingPayment(id, profileID uuid.UUID, amount int64) *domain.Payment {
	now := time.Now().UTC().Add(-time.Minute)
	return &domain.Payment{
		ID:        id,
		ProfileID: profileID,
		Amount:    amount,
		Status:    domain.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ==================== Submit ====================

func TestPaymentService_Submit_Success(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	receipt := "https://cdn.example.com/files/receipts/r1.jpg"

	d.paymentRepo.EXPECT().HasPending(ctx, profileID).Return(false, nil)
	d.paymentRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.feed.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev domain.ChangeEvent) error {
		assert.Equal(t, domain.ChangeInsert, ev.Kind)
		assert.Equal(t, domain.EntityPayment, ev.Entity)
		assert.Equal(t, profileID, ev.OwnerID)
		return nil
	})

	payment, err := d.svc.Submit(ctx, ports.SubmitPaymentRequest{
		ProfileID:  profileID,
		Amount:     25000,
		ReceiptURL: &receipt,
	})
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, int64(25000), payment.Amount)
	assert.Equal(t, &receipt, payment.ReceiptURL)
}

func TestPaymentService_Submit_InvalidAmount(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	payment, err := d.svc.Submit(context.Background(), ports.SubmitPaymentRequest{
		ProfileID: uuid.New(),
		Amount:    0,
	})
	assert.Nil(t, payment)
	require.Error(t, err)
	assertAppError(t, err, "CLM_002")
}

func TestPaymentService_Submit_AlreadyPending(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()

	d.paymentRepo.EXPECT().HasPending(ctx, profileID).Return(true, nil)

	payment, err := d.svc.Submit(ctx, ports.SubmitPaymentRequest{ProfileID: profileID, Amount: 100})
	assert.Nil(t, payment)
	require.Error(t, err)
	assertAppError(t, err, "PAY_003")
}

// ==================== Acknowledge ====================

func TestPaymentService_Acknowledge_Success(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	paymentID := uuid.New()
	approved := pendingPayment(paymentID, profileID, 100)
	approved.Status = domain.PaymentStatusApproved

	d.paymentRepo.EXPECT().GetByID(ctx, paymentID).Return(approved, nil)
	d.paymentRepo.EXPECT().MarkAcknowledged(ctx, paymentID, profileID, gomock.Any()).Return(nil)

	require.NoError(t, d.svc.Acknowledge(ctx, profileID, paymentID))
}

func TestPaymentService_Acknowledge_NotOwner(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paymentID := uuid.New()
	other := pendingPayment(paymentID, uuid.New(), 100)
	other.Status = domain.PaymentStatusRejected

	d.paymentRepo.EXPECT().GetByID(ctx, paymentID).Return(other, nil)

	err := d.svc.Acknowledge(ctx, uuid.New(), paymentID)
	require.Error(t, err)
	assertAppError(t, err, "PAY_001")
}

func TestPaymentService_Acknowledge_StillPending(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	paymentID := uuid.New()

	d.paymentRepo.EXPECT().GetByID(ctx, paymentID).Return(pendingPayment(paymentID, profileID, 100), nil)

	err := d.svc.Acknowledge(ctx, profileID, paymentID)
	require.Error(t, err)
	assertAppError(t, err, "PAY_002")
}

// ==================== Review ====================

func TestPaymentService_Review_ApproveCreditsBalance(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	paymentID := uuid.New()
	reviewerID := uuid.New()
	tx := &mockTx{}
	payment := pendingPayment(paymentID, profileID, 25000)

	d.paymentRepo.EXPECT().GetByID(ctx, paymentID).Return(payment, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.paymentRepo.EXPECT().UpdateReview(ctx, tx, paymentID, domain.PaymentStatusApproved, nil, reviewerID, gomock.Any()).Return(nil)
	d.profileRepo.EXPECT().GetByIDForUpdate(ctx, tx, profileID).Return(activeProfile(profileID, 1000), nil)
	d.profileRepo.EXPECT().UpdateBalance(ctx, tx, profileID, int64(26000)).Return(nil)
	d.feed.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev domain.ChangeEvent) error {
		assert.Equal(t, domain.ChangeUpdate, ev.Kind)
		require.NotNil(t, ev.Balance)
		assert.Equal(t, int64(26000), *ev.Balance)
		require.NotNil(t, ev.Payment)
		assert.Equal(t, domain.PaymentStatusApproved, ev.Payment.Status)
		return nil
	})

	reviewed, err := d.svc.Review(ctx, ports.ReviewRequest{
		PaymentID:  paymentID,
		ReviewerID: reviewerID,
		Approve:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, reviewerID, *reviewed.ReviewedBy)
}

func TestPaymentService_Review_RejectRequiresReason(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	reviewed, err := d.svc.Review(context.Background(), ports.ReviewRequest{
		PaymentID:  uuid.New(),
		ReviewerID: uuid.New(),
		Approve:    false,
	})
	assert.Nil(t, reviewed)
	require.Error(t, err)
	assertAppError(t, err, "PAY_004")
}

func TestPaymentService_Review_RejectDoesNotTouchBalance(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	paymentID := uuid.New()
	reviewerID := uuid.New()
	tx := &mockTx{}
	reason := "receipt unreadable"
	payment := pendingPayment(paymentID, profileID, 25000)

	d.paymentRepo.EXPECT().GetByID(ctx, paymentID).Return(payment, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.paymentRepo.EXPECT().UpdateReview(ctx, tx, paymentID, domain.PaymentStatusRejected, &reason, reviewerID, gomock.Any()).Return(nil)
	d.feed.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev domain.ChangeEvent) error {
		assert.Nil(t, ev.Balance)
		return nil
	})

	reviewed, err := d.svc.Review(ctx, ports.ReviewRequest{
		PaymentID:  paymentID,
		ReviewerID: reviewerID,
		Approve:    false,
		Reason:     &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRejected, reviewed.Status)
	assert.Equal(t, &reason, reviewed.RejectionReason)
}

func TestPaymentService_Review_AlreadyReviewed(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paymentID := uuid.New()
	done := pendingPayment(paymentID, uuid.New(), 100)
	done.Status = domain.PaymentStatusApproved

	d.paymentRepo.EXPECT().GetByID(ctx, paymentID).Return(done, nil)

	reviewed, err := d.svc.Review(ctx, ports.ReviewRequest{
		PaymentID:  paymentID,
		ReviewerID: uuid.New(),
		Approve:    true,
	})
	assert.Nil(t, reviewed)
	require.Error(t, err)
	assertAppError(t, err, "PAY_002")
}

// ==================== ListForReview ====================

func TestPaymentService_ListForReview_ClampsPagination(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.paymentRepo.EXPECT().
		List(ctx, ports.PaymentListParams{Page: 1, PageSize: 20}).
		Return([]domain.Payment{}, int64(0), nil)

	_, total, err := d.svc.ListForReview(ctx, ports.PaymentListParams{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
