package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// RecoveryService orchestrates password recovery: an OTP challenge proves
// email ownership, a reset token proves the challenge was satisfied.
type RecoveryService struct {
	repo     ports.UserRepository
	registry ports.OTPRegistry
	tokens   ports.TokenService
	mail     ports.MailDispatcher
	otpTTL   time.Duration
	resetTTL time.Duration
}

func NewRecoveryService(
	repo ports.UserRepository,
	registry ports.OTPRegistry,
	tokens ports.TokenService,
	mail ports.MailDispatcher,
	otpTTL, resetTTL time.Duration,
) *RecoveryService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	if resetTTL <= 0 {
		resetTTL = 10 * time.Minute
	}
	return &RecoveryService{
		repo:     repo,
		registry: registry,
		tokens:   tokens,
		mail:     mail,
		otpTTL:   otpTTL,
		resetTTL: resetTTL,
	}
}

var _ ports.RecoveryService = (*RecoveryService)(nil)

// RequestOTP issues a fresh code for the account, overwriting any prior live
// code for the same email.
func (s *RecoveryService) RequestOTP(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		return err
	}

	code, err := domain.GenerateOTP()
	if err != nil {
		return err
	}

	entry := domain.OTPEntry{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.otpTTL),
	}
	if err := s.registry.Put(ctx, entry, s.otpTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.mail.Enqueue(otpMail(email, code))
	return nil
}

// VerifyOTP consumes the code and mints a reset token. A mismatching code
// leaves the entry in place so the user gets a limited number of retries
// within the TTL; a matching or expired code always removes it.
func (s *RecoveryService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	entry, err := s.registry.Get(ctx, email)
	if err != nil {
		return "", err
	}
	if entry.Expired(time.Now().UTC()) {
		_ = s.registry.Delete(ctx, email)
		return "", domain.ErrOTPExpired
	}
	if entry.Code != code {
		return "", domain.ErrOTPMismatch
	}

	if err := s.registry.Delete(ctx, email); err != nil {
		return "", fmt.Errorf("consume otp: %w", err)
	}

	return s.tokens.Sign(domain.TokenClaims{Email: email}, domain.PurposeReset, s.resetTTL)
}

// ResetPassword verifies the reset token and overwrites the password hash.
// The token is single-use only by virtue of its expiry; within the window a
// captured token could be replayed.
func (s *RecoveryService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.Verify(resetToken, domain.PurposeReset)
	if err != nil {
		return err
	}
	if !validPassword(newPassword) {
		return domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePasswordHash(ctx, claims.Email, string(hash))
}

func otpMail(email, code string) ports.Mail {
	return ports.Mail{
		To:      email,
		Subject: "Password Reset OTP",
		HTMLBody: fmt.Sprintf(`<h2>Password Reset Request</h2>
<p>Your OTP for password reset is: <strong>%s</strong></p>
<p>This OTP is valid for 10 minutes.</p>`, code),
	}
}
