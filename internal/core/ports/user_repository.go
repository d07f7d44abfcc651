package ports

import (
	"context"
	"time"

	"github.com/breathscope/identity-api/internal/core/domain"
)

// SignupBucket is one day of signup counts produced by the analytics pipeline.
type SignupBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ProfileUpdate carries the mutable profile fields for UpdateProfile.
type ProfileUpdate struct {
	Email    string
	Username string
	Phone    string
}

// UserRepository defines the credential-store contract. Uniqueness of email and
// username is guaranteed at this layer (unique indexes); Create reports a
// duplicate as domain.ErrEmailRegistered or domain.ErrUsernameTaken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	SetVerified(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	UpdateProfile(ctx context.Context, currentEmail string, update ProfileUpdate) error
	LinkGoogleID(ctx context.Context, email, googleID string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)
	SignupsOverTime(ctx context.Context) ([]SignupBucket, error)
}

// OTPRegistry is the short-lived, single-use code store keyed by email.
// Put overwrites any prior live entry for the same email.
type OTPRegistry interface {
	Put(ctx context.Context, entry domain.OTPEntry, ttl time.Duration) error
	// Get returns domain.ErrOTPNotRequested when no live entry exists.
	Get(ctx context.Context, email string) (domain.OTPEntry, error)
	Delete(ctx context.Context, email string) error
}
