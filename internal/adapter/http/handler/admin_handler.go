package handler

import (
	"math"
	"strconv"

	"zenfi-wallet/internal/adapter/http/dto"
	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the admin console endpoints.
type AdminHandler struct {
	adminSvc   ports.AdminService
	paymentSvc ports.PaymentService
	notifSvc   ports.NotificationService
	messageSvc ports.MessageService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	adminSvc ports.AdminService,
	paymentSvc ports.PaymentService,
	notifSvc ports.NotificationService,
	messageSvc ports.MessageService,
) *AdminHandler {
	return &AdminHandler{
		adminSvc:   adminSvc,
		paymentSvc: paymentSvc,
		notifSvc:   notifSvc,
		messageSvc: messageSvc,
	}
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalUsers:       stats.TotalUsers,
		PendingPayments:  stats.PendingPayments,
		ApprovedPayments: stats.ApprovedPayments,
		RejectedPayments: stats.RejectedPayments,
		BannedAccounts:   stats.BannedAccounts,
	})
}

// ListUsers handles GET /api/v1/admin/users?search=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	profiles, err := h.adminSvc.ListUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, dto.FromProfile(&profiles[i]))
	}
	response.OK(c, out)
}

// Ban handles POST /api/v1/admin/users/:id/ban.
func (h *AdminHandler) Ban(c *gin.Context) {
	adminID, _ := middleware.ProfileID(c)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid profile id"))
		return
	}

	var req dto.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.adminSvc.Ban(c.Request.Context(), targetID, req.Reason, adminID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"banned": true})
}

// Unban handles POST /api/v1/admin/users/:id/unban.
func (h *AdminHandler) Unban(c *gin.Context) {
	adminID, _ := middleware.ProfileID(c)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid profile id"))
		return
	}

	if err := h.adminSvc.Unban(c.Request.Context(), targetID, adminID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"banned": false})
}

// ListPayments handles GET /api/v1/admin/payments?status=&page=&page_size=.
func (h *AdminHandler) ListPayments(c *gin.Context) {
	params := ports.PaymentListParams{}
	if raw := c.Query("status"); raw != "" {
		status := domain.PaymentStatus(raw)
		switch status {
		case domain.PaymentStatusPending, domain.PaymentStatusApproved, domain.PaymentStatusRejected:
			params.Status = &status
		default:
			response.Error(c, apperror.Validation("invalid status filter"))
			return
		}
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	payments, total, err := h.paymentSvc.ListForReview(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	totalPages := int(math.Ceil(float64(total) / float64(params.PageSize)))

	response.OK(c, dto.PaymentListResponse{
		Items:      dto.FromPayments(payments),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// ReviewPayment handles POST /api/v1/admin/payments/:id/review.
func (h *AdminHandler) ReviewPayment(c *gin.Context) {
	adminID, _ := middleware.ProfileID(c)

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment id"))
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	payment, err := h.paymentSvc.Review(c.Request.Context(), ports.ReviewRequest{
		PaymentID:  paymentID,
		ReviewerID: adminID,
		Approve:    req.Approve,
		Reason:     req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayment(payment))
}

// SendNotification handles POST /api/v1/admin/notifications. A nil
// profile_id broadcasts to everyone.
func (h *AdminHandler) SendNotification(c *gin.Context) {
	adminID, _ := middleware.ProfileID(c)

	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	send := ports.SendNotificationRequest{
		ProfileID: dto.ParseUUIDPtr(req.ProfileID),
		Title:     req.Title,
		Message:   req.Message,
		Priority:  domain.NotificationPriority(req.Priority),
		CreatedBy: adminID,
	}

	var (
		n   *domain.Notification
		err error
	)
	if send.ProfileID == nil {
		n, err = h.notifSvc.Broadcast(c.Request.Context(), send)
	} else {
		n, err = h.notifSvc.SendToUser(c.Request.Context(), send)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromNotification(n))
}

// PostMessage handles POST /api/v1/admin/messages.
func (h *AdminHandler) PostMessage(c *gin.Context) {
	adminID, _ := middleware.ProfileID(c)

	var req struct {
		ProfileID *string `json:"profile_id,omitempty" binding:"omitempty,uuid"`
		Subject   string  `json:"subject" binding:"required,max=200"`
		Body      string  `json:"body" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	m, err := h.messageSvc.Post(c.Request.Context(), ports.PostMessageRequest{
		ProfileID: dto.ParseUUIDPtr(req.ProfileID),
		Subject:   req.Subject,
		Body:      req.Body,
		SentBy:    adminID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromMessage(m))
}

// Adjust handles POST /api/v1/admin/adjustments.
func (h *AdminHandler) Adjust(c *gin.Context) {
	adminID, _ := middleware.ProfileID(c)

	var req dto.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid profile id"))
		return
	}

	balance, err := h.adminSvc.Adjust(c.Request.Context(), ports.AdjustmentRequest{
		ProfileID: profileID,
		Delta:     req.Delta,
		AdminID:   adminID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AdjustmentResponse{ProfileID: req.ProfileID, Balance: balance})
}
