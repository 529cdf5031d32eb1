package service

import (
	"context"
	"errors"
	"testing"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type notificationTestDeps struct {
	svc         *NotificationServiceImpl
	notifRepo   *mocks.MockNotificationRepository
	profileRepo *mocks.MockProfileRepository
	ctrl        *gomock.Controller
}

func setupNotificationService(t *testing.T) *notificationTestDeps {
	ctrl := gomock.NewController(t)
	d := &notificationTestDeps{
		notifRepo:   mocks.NewMockNotificationRepository(ctrl),
		profileRepo: mocks.NewMockProfileRepository(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewNotificationService(d.notifRepo, d.profileRepo, zerolog.Nop())
	return d
}

func TestNotificationService_Broadcast_Success(t *testing.T) {
	d := setupNotificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID := uuid.New()

	d.notifRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, n *domain.Notification) error {
		assert.True(t, n.IsBroadcast)
		assert.Nil(t, n.ProfileID)
		return nil
	})

	n, err := d.svc.Broadcast(ctx, ports.SendNotificationRequest{
		Title:     "Scheduled maintenance",
		Message:   "Transfers pause at midnight.",
		Priority:  domain.PriorityWarning,
		CreatedBy: adminID,
	})
	require.NoError(t, err)
	assert.True(t, n.IsBroadcast)
	assert.Equal(t, &adminID, n.CreatedBy)
}

func TestNotificationService_Broadcast_InvalidPriority(t *testing.T) {
	d := setupNotificationService(t)
	defer d.ctrl.Finish()

	n, err := d.svc.Broadcast(context.Background(), ports.SendNotificationRequest{
		Title:    "Hi",
		Message:  "there",
		Priority: domain.NotificationPriority("urgent"),
	})
	assert.Nil(t, n)
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

func TestNotificationService_SendToUser_Success(t *testing.T) {
	d := setupNotificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()

	d.profileRepo.EXPECT().GetByID(ctx, profileID).Return(activeProfile(profileID, 0), nil)
	d.notifRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	n, err := d.svc.SendToUser(ctx, ports.SendNotificationRequest{
		ProfileID: &profileID,
		Title:     "Payment approved",
		Message:   "Your transfer claim was approved.",
		Priority:  domain.PriorityInfo,
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.False(t, n.IsBroadcast)
	assert.Equal(t, &profileID, n.ProfileID)
}

func TestNotificationService_SendToUser_UnknownProfile(t *testing.T) {
	d := setupNotificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	profileID := uuid.New()

	d.profileRepo.EXPECT().GetByID(ctx, profileID).Return(nil, nil)

	n, err := d.svc.SendToUser(ctx, ports.SendNotificationRequest{
		ProfileID: &profileID,
		Title:     "Hi",
		Message:   "there",
		Priority:  domain.PriorityInfo,
	})
	assert.Nil(t, n)
	require.Error(t, err)
	assertAppError(t, err, "PAY_001")
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	d := setupNotificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	profileID := uuid.New()

	d.notifRepo.EXPECT().MarkRead(ctx, id, profileID).Return(errors.New("no rows"))

	err := d.svc.MarkRead(ctx, id, profileID)
	require.Error(t, err)
	assertAppError(t, err, "PAY_001")
}
