package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// ProfileService covers the authenticated account-management surface plus the
// admin listing and signup analytics.
type ProfileService struct {
	repo ports.UserRepository
}

func NewProfileService(repo ports.UserRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

var _ ports.ProfileService = (*ProfileService)(nil)

func (s *ProfileService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile changes email/username/phone. Email and username get the same
// friendly pre-checks as registration; the unique indexes remain the backstop.
func (s *ProfileService) UpdateProfile(ctx context.Context, currentEmail string, update ports.ProfileUpdate) error {
	user, err := s.repo.FindByEmail(ctx, currentEmail)
	if err != nil {
		return err
	}

	if update.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, update.Email); err == nil {
			return domain.ErrEmailRegistered
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
	}
	if update.Username != user.Username {
		if !usernamePattern.MatchString(update.Username) {
			return domain.ErrInvalidUsername
		}
		if _, err := s.repo.FindByUsername(ctx, update.Username); err == nil {
			return domain.ErrUsernameTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
	}
	if update.Phone == "" {
		update.Phone = user.Phone
	}

	return s.repo.UpdateProfile(ctx, currentEmail, update)
}

func (s *ProfileService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if !validPassword(newPassword) {
		return domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, user.Email, string(hash))
}

// DeleteAccount hard-deletes the user after re-proving the password.
func (s *ProfileService) DeleteAccount(ctx context.Context, username, password string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.ErrInvalidCredentials
	}
	return s.repo.Delete(ctx, user.ID)
}

func (s *ProfileService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *ProfileService) SignupsOverTime(ctx context.Context) ([]ports.SignupBucket, error) {
	return s.repo.SignupsOverTime(ctx)
}
