package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Accounts (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid email or password", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "An account with this email already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountBanned(reason string) *AppError {
	msg := "Account suspended"
	if reason != "" {
		msg = fmt.Sprintf("Account suspended: %s", reason)
	}
	return New("AUTH_004", msg, http.StatusForbidden)
}

func ErrAdminOnly() *AppError {
	return New("AUTH_005", "Admin privileges required", http.StatusForbidden)
}

// ---- Claims & Balance (CLM) ----

func ErrClaimCooldown() *AppError {
	return New("CLM_001", "Daily reward already claimed", http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("CLM_002", "Invalid amount", http.StatusBadRequest)
}

// ---- Payments (PAY) ----

func ErrNotFound(entity string) *AppError {
	return New("PAY_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrPaymentNotPending() *AppError {
	return New("PAY_002", "Payment is no longer pending", http.StatusConflict)
}

func ErrPaymentAlreadyPending() *AppError {
	return New("PAY_003", "A payment is already awaiting review", http.StatusConflict)
}

func ErrReasonRequired() *AppError {
	return New("PAY_004", "A rejection reason is required", http.StatusBadRequest)
}

// ---- Uploads (UPL) ----

func ErrUnsupportedFileType() *AppError {
	return New("UPL_001", "Only JPG, PNG, or PDF files are accepted", http.StatusBadRequest)
}

func ErrFileTooLarge() *AppError {
	return New("UPL_002", "Maximum file size is 5MB", http.StatusRequestEntityTooLarge)
}

func ErrUploadLinkExpired() *AppError {
	return New("UPL_003", "Upload link has expired", http.StatusForbidden)
}

func ErrInvalidUploadSignature() *AppError {
	return New("UPL_004", "Invalid upload signature", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request-validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
