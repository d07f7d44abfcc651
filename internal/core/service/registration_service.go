package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,9}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
)

// validPassword enforces the password policy: at least 8 characters containing
// both letters and digits.
func validPassword(password string) bool {
	return len(password) >= 8 && hasLetter.MatchString(password) && hasDigit.MatchString(password)
}

// RegistrationService creates accounts and flips them verified.
type RegistrationService struct {
	repo           ports.UserRepository
	tokens         ports.TokenService
	mail           ports.MailDispatcher
	verifyTTL      time.Duration
	verifyLinkBase string
}

func NewRegistrationService(
	repo ports.UserRepository,
	tokens ports.TokenService,
	mail ports.MailDispatcher,
	verifyTTL time.Duration,
	verifyLinkBase string,
) *RegistrationService {
	if verifyTTL <= 0 {
		verifyTTL = time.Hour
	}
	return &RegistrationService{
		repo:           repo,
		tokens:         tokens,
		mail:           mail,
		verifyTTL:      verifyTTL,
		verifyLinkBase: verifyLinkBase,
	}
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

// Register validates the payload, creates the unverified user and enqueues the
// verification email. The find-first uniqueness checks are a fast path for a
// friendlier message; the repository's unique indexes are the real guarantee.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegistrationInput) (*domain.User, error) {
	if !emailPattern.MatchString(in.Email) {
		return nil, domain.ErrInvalidEmail
	}
	if !usernamePattern.MatchString(in.Username) {
		return nil, domain.ErrInvalidUsername
	}
	if !validPassword(in.Password) {
		return nil, domain.ErrInvalidPassword
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailRegistered
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Sign(
		domain.TokenClaims{Email: created.Email},
		domain.PurposeVerify,
		s.verifyTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("sign verification token: %w", err)
	}

	// Dispatch is asynchronous: a mail-provider failure is logged by the
	// dispatcher, the user row is not rolled back.
	s.mail.Enqueue(verificationMail(created.Username, created.Email, s.verifyLinkBase, token))

	return created, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// A second call for the same account fails with ErrAlreadyVerified and does
// not mutate anything.
func (s *RegistrationService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token, domain.PurposeVerify)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}
	if user.Verified {
		return domain.ErrAlreadyVerified
	}

	return s.repo.SetVerified(ctx, user.Email)
}

func verificationMail(username, email, linkBase, token string) ports.Mail {
	link := fmt.Sprintf("%s/%s", linkBase, token)
	return ports.Mail{
		To:      email,
		Subject: "Verify Your Email Address",
		HTMLBody: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Email Verification</h1>
  <p>Hi %s,</p>
  <p>Thank you for signing up! Please verify your email address by clicking the link below:</p>
  <p><a href="%s">Verify Email Address</a></p>
  <p>This link will expire in 1 hour. If you didn't request this, please ignore this email.</p>
</div>`, username, link),
	}
}
