package service

import (
	"testing"
	"time"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("unit-test-secret", time.Hour, "zenfi-wallet")
	profileID := uuid.New()

	token, expiry, err := svc.Generate(profileID, domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, profileID, claims.ProfileID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	issuer := NewJWTTokenService("secret-a", time.Hour, "zenfi-wallet")
	verifier := NewJWTTokenService("secret-b", time.Hour, "zenfi-wallet")

	token, _, err := issuer.Generate(uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	claims, err := verifier.Validate(token)
	assert.Nil(t, claims)
	require.Error(t, err)
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("unit-test-secret", -time.Minute, "zenfi-wallet")

	token, _, err := svc.Generate(uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	assert.Nil(t, claims)
	require.Error(t, err)
}

func TestJWTTokenService_Validate_Garbage(t *testing.T) {
	svc := NewJWTTokenService("unit-test-secret", time.Hour, "zenfi-wallet")

	claims, err := svc.Validate("not-a-jwt")
	assert.Nil(t, claims)
	require.Error(t, err)
}
