package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"zenfi-wallet/config"
	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/internal/core/ports/mocks"
	"zenfi-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type claimTestDeps struct {
	svc         *ClaimServiceImpl
	profileRepo *mocks.MockProfileRepository
	claimRepo   *mocks.MockClaimRepository
	cooldown    *mocks.MockCooldownStore
	feed        *mocks.MockFeedPublisher
	transactor  *mocks.MockDBTransactor
	cfg         config.ClaimConfig
	ctrl        *gomock.Controller
}

func setupClaimService(t *testing.T) *claimTestDeps {
	ctrl := gomock.NewController(t)
	d := &claimTestDeps{
		profileRepo: mocks.NewMockProfileRepository(ctrl),
		claimRepo:   mocks.NewMockClaimRepository(ctrl),
		cooldown:    mocks.NewMockCooldownStore(ctrl),
		feed:        mocks.NewMockFeedPublisher(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		cfg:         config.ClaimConfig{RewardAmount: 500, Cooldown: 24 * time.Hour},
		ctrl:        ctrl,
	}
	d.svc = NewClaimService(
		d.profileRepo, d.claimRepo, d.cooldown, d.feed,
		d.transactor, d.cfg, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func activeProfile(id uuid.UUID, balance int64) *domain.Profile {
	return &domain.Profile{
		ID:      id,
		Email:   "user@example.com",
		Balance: balance,
		Role:    domain.RoleUser,
		Status:  domain.ProfileStatusActive,
	}
}

func TestClaimService_Claim_Success(t *testing.T) {
	d := setupClaimService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	tx := &mockTx{}
	req := ports.ClaimRequest{ProfileID: profileID, IdempotencyKey: "key-1"}
	cooldownKey := domain.BuildClaimCooldownKey(profileID)

	d.claimRepo.EXPECT().GetByIdempotencyKey(ctx, profileID, "key-1").Return(nil, nil)
	d.cooldown.EXPECT().Acquire(ctx, cooldownKey, d.cfg.Cooldown).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.profileRepo.EXPECT().GetByIDForUpdate(ctx, tx, profileID).Return(activeProfile(profileID, 1000), nil)
	d.profileRepo.EXPECT().UpdateBalance(ctx, tx, profileID, int64(1500)).Return(nil)
	d.claimRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.feed.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	result, err := d.svc.Claim(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(1500), result.NewBalance)
	assert.Equal(t, int64(500), result.Claim.Amount)
	assert.Equal(t, "key-1", result.Claim.IdempotencyKey)
	assert.Equal(t, profileID, result.Claim.ProfileID)
}

func TestClaimService_Claim_MissingIdempotencyKey(t *testing.T) {
	d := setupClaimService(t)
	defer d.ctrl.Finish()

	result, err := d.svc.Claim(context.Background(), ports.ClaimRequest{ProfileID: uuid.New()})
	assert.Nil(t, result)
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

func TestClaimService_Claim_ReplayReturnsOriginal(t *testing.T) {
	d := setupClaimService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	prior := &domain.Claim{
		ID:             uuid.New(),
		ProfileID:      profileID,
		Amount:         500,
		IdempotencyKey: "key-1",
		ClaimedAt:      time.Now().UTC().Add(-time.Hour),
	}

	// No cooldown acquire, no transaction: the replay path only reads.
	d.claimRepo.EXPECT().GetByIdempotencyKey(ctx, profileID, "key-1").Return(prior, nil)
	d.profileRepo.EXPECT().GetByID(ctx, profileID).Return(activeProfile(profileID, 1500), nil)

	result, err := d.svc.Claim(ctx, ports.ClaimRequest{ProfileID: profileID, IdempotencyKey: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, prior.ID, result.Claim.ID)
	assert.Equal(t, int64(1500), result.NewBalance)
}

func TestClaimService_Claim_CooldownActive(t *testing.T) {
	d := setupClaimService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	cooldownKey := domain.BuildClaimCooldownKey(profileID)

	d.claimRepo.EXPECT().GetByIdempotencyKey(ctx, profileID, "key-2").Return(nil, nil)
	d.cooldown.EXPECT().Acquire(ctx, cooldownKey, d.cfg.Cooldown).Return(false, nil)

	result, err := d.svc.Claim(ctx, ports.ClaimRequest{ProfileID: profileID, IdempotencyKey: "key-2"})
	assert.Nil(t, result)
	require.Error(t, err)
	assertAppError(t, err, "CLM_001")
}

func TestClaimService_Claim_BannedProfileReleasesCooldown(t *testing.T) {
	d := setupClaimService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	tx := &mockTx{}
	cooldownKey := domain.BuildClaimCooldownKey(profileID)
	reason := "chargeback abuse"
	banned := activeProfile(profileID, 1000)
	banned.Status = domain.ProfileStatusBanned
	banned.BanReason = &reason

	d.claimRepo.EXPECT().GetByIdempotencyKey(ctx, profileID, "key-3").Return(nil, nil)
	d.cooldown.EXPECT().Acquire(ctx, cooldownKey, d.cfg.Cooldown).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.profileRepo.EXPECT().GetByIDForUpdate(ctx, tx, profileID).Return(banned, nil)
	// Credit failed, the slot must be freed for a later retry.
	d.cooldown.EXPECT().Release(ctx, cooldownKey).Return(nil)

	result, err := d.svc.Claim(ctx, ports.ClaimRequest{ProfileID: profileID, IdempotencyKey: "key-3"})
	assert.Nil(t, result)
	require.Error(t, err)
	assertAppError(t, err, "AUTH_004")
}

func TestClaimService_Claim_CreditFailureReleasesCooldown(t *testing.T) {
	d := setupClaimService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()
	tx := &mockTx{}
	cooldownKey := domain.BuildClaimCooldownKey(profileID)

	d.claimRepo.EXPECT().GetByIdempotencyKey(ctx, profileID, "key-4").Return(nil, nil)
	d.cooldown.EXPECT().Acquire(ctx, cooldownKey, d.cfg.Cooldown).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.profileRepo.EXPECT().GetByIDForUpdate(ctx, tx, profileID).Return(activeProfile(profileID, 1000), nil)
	d.profileRepo.EXPECT().UpdateBalance(ctx, tx, profileID, int64(1500)).Return(errors.New("connection reset"))
	d.cooldown.EXPECT().Release(ctx, cooldownKey).Return(nil)

	result, err := d.svc.Claim(ctx, ports.ClaimRequest{ProfileID: profileID, IdempotencyKey: "key-4"})
	assert.Nil(t, result)
	require.Error(t, err)
	assertAppError(t, err, "SYS_001")
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}
