package handler

import (
	"net/http"
	"time"

	"zenfi-wallet/internal/adapter/http/dto"
	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const timeFormat = time.RFC3339

// PaymentHandler handles user-facing payment endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Submit handles POST /api/v1/payments.
func (h *PaymentHandler) Submit(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	payment, err := h.paymentSvc.Submit(c.Request.Context(), ports.SubmitPaymentRequest{
		ProfileID:  profileID,
		Amount:     req.Amount,
		ReceiptURL: req.ReceiptURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromPayment(payment))
}

// Latest handles GET /api/v1/payments/latest. Responds 204 when the profile
// has no payments yet.
func (h *PaymentHandler) Latest(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payment, err := h.paymentSvc.Latest(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if payment == nil {
		c.Status(http.StatusNoContent)
		return
	}

	response.OK(c, dto.FromPayment(payment))
}

// List handles GET /api/v1/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payments, err := h.paymentSvc.ListByProfile(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayments(payments))
}

// Acknowledge handles POST /api/v1/payments/:id/ack.
func (h *PaymentHandler) Acknowledge(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment id"))
		return
	}

	if err := h.paymentSvc.Acknowledge(c.Request.Context(), profileID, paymentID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"acknowledged": true})
}
