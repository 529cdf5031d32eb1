package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"zenfi-wallet/config"
	"zenfi-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUploadService(t *testing.T) *UploadServiceImpl {
	t.Helper()
	svc := NewUploadService(config.UploadConfig{
		SigningSecret: "test-signing-secret",
		BaseURL:       "https://cdn.zenfi.test/",
		MaxSizeBytes:  5 * 1024 * 1024,
		URLTTL:        15 * time.Minute,
	})
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func TestUploadService_SignUpload_Success(t *testing.T) {
	svc := setupUploadService(t)
	profileID := uuid.New()

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   profileID,
		FileName:    "receipt.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1024,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signed.UploadURL, "https://cdn.zenfi.test/uploads/receipts/"+profileID.String()+"/"))
	assert.True(t, strings.HasPrefix(signed.PublicURL, "https://cdn.zenfi.test/files/receipts/"+profileID.String()+"/"))
	assert.True(t, strings.HasSuffix(signed.PublicURL, ".jpg"))
	assert.Equal(t, time.Unix(1700000000, 0).Add(15*time.Minute), signed.ExpiresAt)
}

// TestUploadService_SignUpload_DefaultBaseURL pins the default config against
// the "/uploads/" segment the service appends; a base URL that already ends in
// /uploads would double it and break verification on the serving route.
func TestUploadService_SignUpload_DefaultBaseURL(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	svc := NewUploadService(config.UploadConfig{
		SigningSecret: "test-signing-secret",
		BaseURL:       cfg.Upload.BaseURL,
		MaxSizeBytes:  cfg.Upload.MaxSizeBytes,
		URLTTL:        cfg.Upload.URLTTL,
	})
	profileID := uuid.New()

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   profileID,
		FileName:    "receipt.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1024,
	})
	require.NoError(t, err)

	parsed, err := url.Parse(signed.UploadURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(parsed.Path, "/uploads/receipts/"))
	assert.False(t, strings.Contains(parsed.Path, "/uploads/uploads/"))

	objectPath := strings.TrimPrefix(parsed.Path, "/uploads/")
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyUpload(objectPath, expires, parsed.Query().Get("signature")))
}

func TestUploadService_SignUpload_UnsupportedType(t *testing.T) {
	svc := setupUploadService(t)

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   uuid.New(),
		FileName:    "malware.exe",
		ContentType: "application/octet-stream",
		SizeBytes:   1024,
	})
	assert.Nil(t, signed)
	require.Error(t, err)
	assertAppError(t, err, "UPL_001")
}

// Receipts accept jpg, jpeg, png and pdf only.
func TestUploadService_SignUpload_RejectsWebp(t *testing.T) {
	svc := setupUploadService(t)

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   uuid.New(),
		FileName:    "receipt.webp",
		ContentType: "image/webp",
		SizeBytes:   1024,
	})
	assert.Nil(t, signed)
	require.Error(t, err)
	assertAppError(t, err, "UPL_001")
}

func TestUploadService_SignUpload_FileTooLarge(t *testing.T) {
	svc := setupUploadService(t)

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   uuid.New(),
		FileName:    "huge.pdf",
		ContentType: "application/pdf",
		SizeBytes:   100 * 1024 * 1024,
	})
	assert.Nil(t, signed)
	require.Error(t, err)
	assertAppError(t, err, "UPL_002")
}

func TestUploadService_VerifyUpload_RoundTrip(t *testing.T) {
	svc := setupUploadService(t)

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   uuid.New(),
		FileName:    "receipt.png",
		ContentType: "image/png",
		SizeBytes:   2048,
	})
	require.NoError(t, err)

	// The signed URL verifies against the service that issued it.
	parsed, err := url.Parse(signed.UploadURL)
	require.NoError(t, err)
	objectPath := strings.TrimPrefix(parsed.Path, "/uploads/")
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	signature := parsed.Query().Get("signature")

	require.NoError(t, svc.VerifyUpload(objectPath, expires, signature))
}

func TestUploadService_VerifyUpload_Expired(t *testing.T) {
	svc := setupUploadService(t)

	expired := time.Unix(1700000000, 0).Add(-time.Minute).Unix()
	err := svc.VerifyUpload("receipts/x/y.jpg", expired, "whatever")
	require.Error(t, err)
	assertAppError(t, err, "UPL_003")
}

func TestUploadService_VerifyUpload_TamperedPath(t *testing.T) {
	svc := setupUploadService(t)

	signed, err := svc.SignUpload(ports.SignUploadRequest{
		ProfileID:   uuid.New(),
		FileName:    "receipt.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
	})
	require.NoError(t, err)

	parsed, err := url.Parse(signed.UploadURL)
	require.NoError(t, err)
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	signature := parsed.Query().Get("signature")

	err = svc.VerifyUpload(fmt.Sprintf("receipts/%s/other.pdf", uuid.New()), expires, signature)
	require.Error(t, err)
	assertAppError(t, err, "UPL_004")
}
