package ports

import (
	"context"

	"github.com/breathscope/identity-api/internal/core/domain"
)

// RegistrationInput is the raw signup payload before validation.
type RegistrationInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// RegistrationService creates accounts and consumes verification tokens.
type RegistrationService interface {
	Register(ctx context.Context, in RegistrationInput) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
}

// AuthService authenticates credentials and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// RecoveryService drives the OTP-based password recovery state machine:
// request → verify → reset.
type RecoveryService interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// ProviderProfile is the identity delivered by the OAuth provider callback.
type ProviderProfile struct {
	ProviderID  string
	Email       string
	DisplayName string
	PhotoURL    string
}

// OAuthService reconciles a provider profile with a local account and issues a
// session token for it.
type OAuthService interface {
	LinkProfile(ctx context.Context, profile ProviderProfile) (string, *domain.User, error)
}

// ProfileService covers the authenticated account-management surface.
type ProfileService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, currentEmail string, update ProfileUpdate) error
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, username, password string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	SignupsOverTime(ctx context.Context) ([]SignupBucket, error)
}
