package handler

import (
	"zenfi-wallet/internal/adapter/http/dto"
	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves the authoritative balance read and the daily claim.
type WalletHandler struct {
	profileRepo ports.ProfileRepository
	claimSvc    ports.ClaimService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(profileRepo ports.ProfileRepository, claimSvc ports.ClaimService) *WalletHandler {
	return &WalletHandler{profileRepo: profileRepo, claimSvc: claimSvc}
}

// GetWallet handles GET /api/v1/wallet. The returned balance is the server
// truth clients reconcile against.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	profile, err := h.profileRepo.GetByID(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if profile == nil {
		response.Error(c, apperror.ErrNotFound("profile"))
		return
	}

	response.OK(c, dto.FromProfile(profile))
}

// Claim handles POST /api/v1/wallet/claim.
func (h *WalletHandler) Claim(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.claimSvc.Claim(c.Request.Context(), ports.ClaimRequest{
		ProfileID:      profileID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ClaimResponse{
		ClaimID:   result.Claim.ID.String(),
		Amount:    result.Claim.Amount,
		Balance:   result.NewBalance,
		ClaimedAt: result.Claim.ClaimedAt.UTC().Format(timeFormat),
	})
}
