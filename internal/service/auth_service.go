package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	profileRepo ports.ProfileRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	log         zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	profileRepo ports.ProfileRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		profileRepo: profileRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		log:         log,
	}
}

// Register creates a new profile and issues a session token.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	referralCode, err := generateReferralCode()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate referral code: %w", err))
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Balance:      0,
		ReferralCode: referralCode,
		Role:         domain.RoleUser,
		Status:       domain.ProfileStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create profile: %w", err))
	}

	token, expiry, err := s.tokenSvc.Generate(profile.ID, profile.Role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().
		Str("profile_id", profile.ID.String()).
		Msg("profile registered")

	return &ports.AuthResult{Profile: profile, Token: token, Expiry: expiry}, nil
}

// Login validates credentials and returns a session token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, profile.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	if profile.IsBanned() {
		reason := ""
		if profile.BanReason != nil {
			reason = *profile.BanReason
		}
		return nil, apperror.ErrAccountBanned(reason)
	}

	token, expiry, err := s.tokenSvc.Generate(profile.ID, profile.Role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.AuthResult{Profile: profile, Token: token, Expiry: expiry}, nil
}

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateReferralCode produces a short shareable code like ZF-7KQ2M9.
func generateReferralCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return "ZF-" + string(buf), nil
}
