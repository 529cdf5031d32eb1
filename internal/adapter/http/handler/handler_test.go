package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zenfi-wallet/internal/adapter/http/dto"
	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/internal/core/ports/mocks"
	"zenfi-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authedContext(w *httptest.ResponseRecorder, profileID uuid.UUID) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set(middleware.CtxProfileID, profileID)
	c.Set(middleware.CtxRole, domain.RoleUser)
	return c, r
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	profileID := uuid.New()
	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Email:    "ada@example.com",
		Password: "password123",
	}).Return(&ports.AuthResult{
		Profile: &domain.Profile{
			ID:           profileID,
			Email:        "ada@example.com",
			ReferralCode: "ZF-7KQ2M9",
			Role:         domain.RoleUser,
			Status:       domain.ProfileStatusActive,
		},
		Token:  "jwt-token",
		Expiry: expiry,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "ada@example.com",
		Password: "password123",
	})

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "jwt-token", data["token"])
	profile := data["profile"].(map[string]interface{})
	assert.Equal(t, profileID.String(), profile["id"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "ghost@example.com", "wrong").Return(nil, apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "wrong",
	})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetWallet_ReturnsProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	profileRepo := mocks.NewMockProfileRepository(ctrl)
	h := NewWalletHandler(profileRepo, mocks.NewMockClaimService(ctrl))

	profileID := uuid.New()
	profileRepo.EXPECT().GetByID(gomock.Any(), profileID).Return(&domain.Profile{
		ID:      profileID,
		Email:   "ada@example.com",
		Balance: 4200,
		Role:    domain.RoleUser,
		Status:  domain.ProfileStatusActive,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, profileID)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)

	h.GetWallet(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(4200), data["balance"])
}

func TestClaim_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	claimSvc := mocks.NewMockClaimService(ctrl)
	h := NewWalletHandler(mocks.NewMockProfileRepository(ctrl), claimSvc)

	profileID := uuid.New()
	claimSvc.EXPECT().Claim(gomock.Any(), ports.ClaimRequest{
		ProfileID:      profileID,
		IdempotencyKey: "claim-2024-06-01",
	}).Return(&ports.ClaimResult{
		Claim: &domain.Claim{
			ID:             uuid.New(),
			ProfileID:      profileID,
			Amount:         500,
			IdempotencyKey: "claim-2024-06-01",
			ClaimedAt:      time.Now().UTC(),
		},
		NewBalance: 4700,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, profileID)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/wallet/claim", dto.ClaimRequest{
		IdempotencyKey: "claim-2024-06-01",
	})

	h.Claim(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(4700), data["balance"])
	assert.Equal(t, float64(500), data["amount"])
}

func TestClaim_CooldownConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	claimSvc := mocks.NewMockClaimService(ctrl)
	h := NewWalletHandler(mocks.NewMockProfileRepository(ctrl), claimSvc)

	profileID := uuid.New()
	claimSvc.EXPECT().Claim(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrClaimCooldown())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, profileID)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/wallet/claim", dto.ClaimRequest{
		IdempotencyKey: "claim-2024-06-01",
	})

	h.Claim(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Payment Handler Tests ---

func TestSubmitPayment_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentSvc := mocks.NewMockPaymentService(ctrl)
	h := NewPaymentHandler(paymentSvc)

	profileID := uuid.New()
	paymentID := uuid.New()
	paymentSvc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(&domain.Payment{
		ID:        paymentID,
		ProfileID: profileID,
		Amount:    25000,
		Status:    domain.PaymentStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, profileID)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/payments", dto.SubmitPaymentRequest{Amount: 25000})

	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, paymentID.String(), data["id"])
	assert.Equal(t, "pending", data["status"])
}

func TestLatestPayment_NoneYet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentSvc := mocks.NewMockPaymentService(ctrl)
	h := NewPaymentHandler(paymentSvc)

	profileID := uuid.New()
	paymentSvc.EXPECT().Latest(gomock.Any(), profileID).Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, profileID)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/latest", nil)

	h.Latest(c)
	// c.Status only sets the code; flush it to the recorder.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAcknowledgePayment_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewPaymentHandler(mocks.NewMockPaymentService(ctrl))

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/not-a-uuid/ack", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Acknowledge(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Admin Handler Tests ---

func TestAdminReview_RejectWithoutReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentSvc := mocks.NewMockPaymentService(ctrl)
	h := NewAdminHandler(
		mocks.NewMockAdminService(ctrl), paymentSvc,
		mocks.NewMockNotificationService(ctrl), mocks.NewMockMessageService(ctrl),
	)

	paymentID := uuid.New()
	paymentSvc.EXPECT().Review(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrReasonRequired())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/admin/payments/"+paymentID.String()+"/review", dto.ReviewRequest{Approve: false})
	c.Params = gin.Params{{Key: "id", Value: paymentID.String()}}

	h.ReviewPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminListPayments_InvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAdminHandler(
		mocks.NewMockAdminService(ctrl), mocks.NewMockPaymentService(ctrl),
		mocks.NewMockNotificationService(ctrl), mocks.NewMockMessageService(ctrl),
	)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/payments?status=bogus", nil)

	h.ListPayments(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminSendNotification_BroadcastWhenNoProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	notifSvc := mocks.NewMockNotificationService(ctrl)
	h := NewAdminHandler(
		mocks.NewMockAdminService(ctrl), mocks.NewMockPaymentService(ctrl),
		notifSvc, mocks.NewMockMessageService(ctrl),
	)

	adminID := uuid.New()
	notifSvc.EXPECT().Broadcast(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.SendNotificationRequest) (*domain.Notification, error) {
			assert.Nil(t, req.ProfileID)
			assert.Equal(t, adminID, req.CreatedBy)
			return &domain.Notification{
				ID:          uuid.New(),
				Title:       req.Title,
				Message:     req.Message,
				Priority:    req.Priority,
				IsBroadcast: true,
				CreatedAt:   time.Now().UTC(),
			}, nil
		})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, adminID)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/admin/notifications", dto.SendNotificationRequest{
		Title:    "Maintenance",
		Message:  "Back at 02:00 UTC",
		Priority: "warning",
	})

	h.SendNotification(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, true, data["is_broadcast"])
}

// --- Upload Handler Tests ---

func TestUploadReceive_BadExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewUploadHandler(mocks.NewMockUploadService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/uploads/receipts/x/y.jpg?expires=abc&signature=s", nil)
	c.Params = gin.Params{{Key: "path", Value: "/receipts/x/y.jpg"}}

	h.Receive(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadReceive_VerifiedOK(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uploadSvc := mocks.NewMockUploadService(ctrl)
	h := NewUploadHandler(uploadSvc)

	uploadSvc.EXPECT().VerifyUpload("receipts/x/y.jpg", int64(1700000900), "sig").Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/uploads/receipts/x/y.jpg?expires=1700000900&signature=sig", bytes.NewReader([]byte("bytes")))
	c.Params = gin.Params{{Key: "path", Value: "/receipts/x/y.jpg"}}

	h.Receive(c)
	// c.Status only sets the code; flush it to the recorder.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusCreated, w.Code)
}
