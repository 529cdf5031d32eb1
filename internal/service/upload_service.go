package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"zenfi-wallet/config"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"

	"github.com/google/uuid"
)

// extensions for the content types receipts may use.
var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// UploadServiceImpl implements ports.UploadService using HMAC-SHA256 signed
// URLs: the server never proxies file bytes, it only vouches for a one-time
// PUT target.
type UploadServiceImpl struct {
	cfg config.UploadConfig
	now func() time.Time
}

// NewUploadService creates a new UploadServiceImpl.
func NewUploadService(cfg config.UploadConfig) *UploadServiceImpl {
	return &UploadServiceImpl{cfg: cfg, now: time.Now}
}

// SignUpload validates the file metadata and issues a time-limited signed
// PUT URL plus the durable public URL the receipt will live at.
func (s *UploadServiceImpl) SignUpload(req ports.SignUploadRequest) (*ports.SignedUpload, error) {
	ext, ok := allowedContentTypes[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, apperror.ErrUnsupportedFileType()
	}
	if req.SizeBytes <= 0 || req.SizeBytes > s.cfg.MaxSizeBytes {
		return nil, apperror.ErrFileTooLarge()
	}

	objectPath := path.Join("receipts", req.ProfileID.String(), uuid.New().String()+ext)
	expiresAt := s.now().Add(s.cfg.URLTTL)
	signature := s.sign(objectPath, expiresAt.Unix())

	uploadURL := fmt.Sprintf("%s/uploads/%s?expires=%d&signature=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), objectPath, expiresAt.Unix(), signature)
	publicURL := fmt.Sprintf("%s/files/%s", strings.TrimRight(s.cfg.BaseURL, "/"), objectPath)

	return &ports.SignedUpload{
		UploadURL: uploadURL,
		PublicURL: publicURL,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyUpload checks an incoming PUT's signature and expiry.
func (s *UploadServiceImpl) VerifyUpload(objectPath string, expiresAt int64, signature string) error {
	if s.now().Unix() > expiresAt {
		return apperror.ErrUploadLinkExpired()
	}

	expected := s.sign(objectPath, expiresAt)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperror.ErrInvalidUploadSignature()
	}
	return nil
}

// sign computes HMAC-SHA256 over PATH|EXPIRES, lowercase hex encoded.
func (s *UploadServiceImpl) sign(objectPath string, expiresAt int64) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.SigningSecret))
	fmt.Fprintf(mac, "%s|%d", objectPath, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}
