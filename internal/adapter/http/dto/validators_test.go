package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct(t *testing.T) {
	receipt := "  https://cdn.example.com/r.jpg "
	req := SubmitPaymentRequest{
		Amount:     100,
		ReceiptURL: &receipt,
	}
	SanitizeStruct(&req)
	assert.Equal(t, "https://cdn.example.com/r.jpg", *req.ReceiptURL)

	login := LoginRequest{Email: " ada@example.com ", Password: "<b>pw</b>"}
	SanitizeStruct(&login)
	assert.Equal(t, "ada@example.com", login.Email)
	assert.Equal(t, "&lt;b&gt;pw&lt;/b&gt;", login.Password)
}

func TestSanitizeStruct_NonStructIsNoop(t *testing.T) {
	s := "untouched"
	SanitizeStruct(&s)
	assert.Equal(t, "untouched", s)
	SanitizeStruct(nil)
}

func TestSafeStringRe(t *testing.T) {
	assert.True(t, safeStringRe.MatchString("claim-2024.01_abc"))
	assert.False(t, safeStringRe.MatchString("has space"))
	assert.False(t, safeStringRe.MatchString("semi;colon"))
	assert.False(t, safeStringRe.MatchString(""))
}
