package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// AuthService implements credential login.
type AuthService struct {
	repo       ports.UserRepository
	tokens     ports.TokenService
	sessionTTL time.Duration
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}
	return &AuthService{repo: repo, tokens: tokens, sessionTTL: sessionTTL}
}

var _ ports.AuthService = (*AuthService)(nil)

// Login authenticates a username/password pair and mints a session token.
// Unknown usernames and wrong passwords produce the same error so that the
// response never reveals which accounts exist. A verified=false account may
// still log in; verification gates features downstream, not authentication.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
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
