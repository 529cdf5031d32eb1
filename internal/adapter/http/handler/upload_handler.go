package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"zenfi-wallet/internal/adapter/http/dto"
	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// UploadHandler issues signed receipt-upload URLs and accepts the signed PUT.
type UploadHandler struct {
	uploadSvc ports.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadSvc ports.UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

// Sign handles POST /api/v1/uploads/sign.
func (h *UploadHandler) Sign(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	signed, err := h.uploadSvc.SignUpload(ports.SignUploadRequest{
		ProfileID:   profileID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.SignUploadResponse{
		UploadURL: signed.UploadURL,
		PublicURL: signed.PublicURL,
		ExpiresAt: signed.ExpiresAt.Unix(),
	})
}

// Receive handles PUT /uploads/*path, the target the signed URL points at.
// The signature covers the object path and expiry, so a forged or stale
// link is rejected before any bytes are read.
func (h *UploadHandler) Receive(c *gin.Context) {
	objectPath := strings.TrimPrefix(c.Param("path"), "/")
	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil {
		response.Error(c, apperror.ErrInvalidUploadSignature())
		return
	}

	if err := h.uploadSvc.VerifyUpload(objectPath, expires, c.Query("signature")); err != nil {
		response.Error(c, err)
		return
	}

	// Drain the body; object storage is fronted elsewhere, this endpoint
	// only vouches for the link.
	if c.Request.Body != nil {
		_, _ = io.Copy(io.Discard, c.Request.Body)
	}

	c.Status(http.StatusCreated)
}
