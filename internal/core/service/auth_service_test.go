package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/breathscope/identity-api/internal/core/domain"
)

func seedUser(t *testing.T, repo *stubUserRepo, username, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := repo.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLogin_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "carol", "carol@x.com", "s3cretpw1", domain.RoleAdmin)
	tokens := NewTokenService("secret")
	svc := NewAuthService(repo, tokens, time.Hour)

	token, user, err := svc.Login(context.Background(), "carol", "s3cretpw1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims, err := tokens.Verify(token, domain.PurposeSession)
	if err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
	if claims.Username != "carol" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token embeds wrong user id: %s", claims.UserID)
	}
	if ttl := time.Until(claims.ExpireAt); ttl < 59*time.Minute || ttl > time.Hour {
		t.Fatalf("expected ~1h session ttl, got %s", ttl)
	}
}

func TestLogin_CaseInsensitiveUsername(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "Carol", "carol@x.com", "s3cretpw1", domain.RoleUser)
	svc := NewAuthService(repo, NewTokenService("secret"), time.Hour)

	if _, _, err := svc.Login(context.Background(), "carol", "s3cretpw1"); err != nil {
		t.Fatalf("case-insensitive login failed: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "dave", "dave@x.com", "goodpass1", domain.RoleUser)
	svc := NewAuthService(repo, NewTokenService("secret"), time.Hour)

	if _, _, err := svc.Login(context.Background(), "dave", "badpass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// Unknown usernames yield the same error as wrong passwords so responses never
// reveal which accounts exist.
func TestLogin_UnknownUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, NewTokenService("secret"), time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost", "whatever1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// An unverified account may still authenticate; verification gates features,
// not login.
func TestLogin_UnverifiedAccount(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "erin", "erin@x.com", "passw0rd1", domain.RoleUser)
	if user.Verified {
		t.Fatalf("seed should be unverified")
	}
	svc := NewAuthService(repo, NewTokenService("secret"), time.Hour)

	_, got, err := svc.Login(context.Background(), "erin", "passw0rd1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Verified {
		t.Fatalf("verified flag must be reported as false")
	}
}

func TestLogin_EmptyInput(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), NewTokenService("secret"), time.Hour)

	if _, _, err := svc.Login(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
