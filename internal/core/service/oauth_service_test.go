package service

import (
	"context"
	"testing"
	"time"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

var googleProfile = ports.ProviderProfile{
	ProviderID:  "google-123",
	Email:       "frank@x.com",
	DisplayName: "frank",
	PhotoURL:    "https://lh3.example.com/photo.jpg",
}

func TestLinkProfile_CreatesVerifiedUser(t *testing.T) {
	repo := newStubUserRepo()
	tokens := NewTokenService("secret")
	svc := NewOAuthService(repo, tokens, 7*24*time.Hour)

	token, user, err := svc.LinkProfile(context.Background(), googleProfile)
	if err != nil {
		t.Fatalf("link profile: %v", err)
	}
	if user.Username != "frank" {
		t.Fatalf("unexpected username: %s", user.Username)
	}
	if !user.Verified {
		t.Fatalf("provider-proven account must be created verified")
	}
	if user.PasswordHash != "" {
		t.Fatalf("oauth account must be passwordless")
	}
	if user.GoogleID != "google-123" {
		t.Fatalf("provider id not stored")
	}
	if user.ProfilePicture != googleProfile.PhotoURL {
		t.Fatalf("photo not stored")
	}

	claims, err := tokens.Verify(token, domain.PurposeSession)
	if err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
	if ttl := time.Until(claims.ExpireAt); ttl < 7*24*time.Hour-time.Minute || ttl > 7*24*time.Hour {
		t.Fatalf("expected ~7d session ttl, got %s", ttl)
	}
}

func TestLinkProfile_UsernameFallsBackToEmailLocalPart(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewOAuthService(repo, NewTokenService("secret"), 0)

	profile := googleProfile
	profile.DisplayName = ""
	_, user, err := svc.LinkProfile(context.Background(), profile)
	if err != nil {
		t.Fatalf("link profile: %v", err)
	}
	if user.Username != "frank" {
		t.Fatalf("expected email local part, got %s", user.Username)
	}
}

func TestLinkProfile_FindsExistingByProviderID(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewOAuthService(repo, NewTokenService("secret"), 0)
	ctx := context.Background()

	_, first, err := svc.LinkProfile(ctx, googleProfile)
	if err != nil {
		t.Fatalf("first link: %v", err)
	}
	_, second, err := svc.LinkProfile(ctx, googleProfile)
	if err != nil {
		t.Fatalf("second link: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same account, got %s and %s", first.ID, second.ID)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repo.users))
	}
}

// An account registered by email beforehand gets the provider id attached
// instead of a duplicate account.
func TestLinkProfile_LinksByEmail(t *testing.T) {
	repo := newStubUserRepo()
	existing := seedUser(t, repo, "frank", "frank@x.com", "Passw0rd", domain.RoleUser)
	svc := NewOAuthService(repo, NewTokenService("secret"), 0)

	_, user, err := svc.LinkProfile(context.Background(), googleProfile)
	if err != nil {
		t.Fatalf("link profile: %v", err)
	}
	if user.ID != existing.ID {
		t.Fatalf("expected linkage to existing account")
	}
	stored, _ := repo.FindByEmail(context.Background(), "frank@x.com")
	if stored.GoogleID != "google-123" {
		t.Fatalf("provider id not linked to existing account")
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repo.users))
	}
}
