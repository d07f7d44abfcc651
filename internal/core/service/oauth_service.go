package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// OAuthService reconciles provider profiles with local accounts.
type OAuthService struct {
	repo       ports.UserRepository
	tokens     ports.TokenService
	sessionTTL time.Duration
}

func NewOAuthService(repo ports.UserRepository, tokens ports.TokenService, sessionTTL time.Duration) *OAuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &OAuthService{repo: repo, tokens: tokens, sessionTTL: sessionTTL}
}

var _ ports.OAuthService = (*OAuthService)(nil)

// LinkProfile resolves the profile to a local user, creating or linking one as
// needed, and mints a session token. Resolution order: provider id, then email
// (account linking), then a fresh account. A fresh account is created already
// verified — ownership of the email was proven by the provider — and carries
// no password hash.
func (s *OAuthService) LinkProfile(ctx context.Context, profile ports.ProviderProfile) (string, *domain.User, error) {
	user, err := s.repo.FindByGoogleID(ctx, profile.ProviderID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}

	if user == nil {
		user, err = s.repo.FindByEmail(ctx, profile.Email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, err
		}
		if user != nil {
			if err := s.repo.LinkGoogleID(ctx, user.Email, profile.ProviderID); err != nil {
				return "", nil, err
			}
			user.GoogleID = profile.ProviderID
		}
	}

	if user == nil {
		now := time.Now().UTC()
		user, err = s.repo.Create(ctx, &domain.User{
			Username:       defaultUsername(profile),
			Email:          profile.Email,
			Role:           domain.RoleUser,
			Verified:       true,
			GoogleID:       profile.ProviderID,
			ProfilePicture: profile.PhotoURL,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return "", nil, err
		}
	}

	token, err := s.tokens.Sign(domain.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, domain.PurposeSession, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func defaultUsername(profile ports.ProviderProfile) string {
	if profile.DisplayName != "" {
		return profile.DisplayName
	}
	local, _, _ := strings.Cut(profile.Email, "@")
	return local
}
