package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

type stubProfileService struct {
	meFn      func(ctx context.Context, userID string) (*domain.User, error)
	updateFn  func(ctx context.Context, currentEmail string, update ports.ProfileUpdate) error
	changeFn  func(ctx context.Context, username, currentPassword, newPassword string) error
	deleteFn  func(ctx context.Context, username, password string) error
	listFn    func(ctx context.Context) ([]*domain.User, error)
	signupsFn func(ctx context.Context) ([]ports.SignupBucket, error)
}

func (s *stubProfileService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, currentEmail string, update ports.ProfileUpdate) error {
	return s.updateFn(ctx, currentEmail, update)
}

func (s *stubProfileService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	return s.changeFn(ctx, username, currentPassword, newPassword)
}

func (s *stubProfileService) DeleteAccount(ctx context.Context, username, password string) error {
	return s.deleteFn(ctx, username, password)
}

func (s *stubProfileService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubProfileService) SignupsOverTime(ctx context.Context) ([]ports.SignupBucket, error) {
	return s.signupsFn(ctx)
}

func TestProfileHandler_Me(t *testing.T) {
	svc := &stubProfileService{
		meFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != "user_1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return &domain.User{ID: "user_1", Username: "alice", Email: "alice@x.com", PasswordHash: "hash"}, nil
		},
	}
	h := NewProfileHandler(svc)

	c, rec := newJSONContext(t, http.MethodGet, "/me", "")
	c.Set("user_id", "user_1")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("response leaks password hash: %s", rec.Body.String())
	}
}

func TestProfileHandler_Me_MissingClaims(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{})

	c, _ := newJSONContext(t, http.MethodGet, "/me", "")
	err := h.Me(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	var gotEmail string
	var gotUpdate ports.ProfileUpdate
	svc := &stubProfileService{
		updateFn: func(_ context.Context, currentEmail string, update ports.ProfileUpdate) error {
			gotEmail, gotUpdate = currentEmail, update
			return nil
		},
	}
	h := NewProfileHandler(svc)

	c, rec := newJSONContext(t, http.MethodPut, "/users",
		`{"currentEmail":"alice@x.com","newEmail":"alice@y.com","username":"alice","phone":"5551234"}`)
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotEmail != "alice@x.com" {
		t.Fatalf("unexpected current email: %s", gotEmail)
	}
	if gotUpdate.Email != "alice@y.com" || gotUpdate.Username != "alice" || gotUpdate.Phone != "5551234" {
		t.Fatalf("unexpected update: %+v", gotUpdate)
	}
}

func TestProfileHandler_UpdateProfile_Conflict(t *testing.T) {
	svc := &stubProfileService{
		updateFn: func(context.Context, string, ports.ProfileUpdate) error {
			return domain.ErrUsernameTaken
		},
	}
	h := NewProfileHandler(svc)

	c, _ := newJSONContext(t, http.MethodPut, "/users",
		`{"currentEmail":"alice@x.com","newEmail":"alice@x.com","username":"taken"}`)
	if err := h.UpdateProfile(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken to propagate, got %v", err)
	}
}

func TestProfileHandler_ChangePassword(t *testing.T) {
	svc := &stubProfileService{
		changeFn: func(_ context.Context, username, currentPassword, newPassword string) error {
			if username != "alice" || currentPassword != "Passw0rd" || newPassword != "NewPassw0rd" {
				t.Fatalf("unexpected args: %s %s %s", username, currentPassword, newPassword)
			}
			return nil
		},
	}
	h := NewProfileHandler(svc)

	c, rec := newJSONContext(t, http.MethodPut, "/change-password",
		`{"username":"alice","currentPassword":"Passw0rd","newPassword":"NewPassw0rd"}`)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProfileHandler_ChangePassword_WrongCurrent(t *testing.T) {
	svc := &stubProfileService{
		changeFn: func(context.Context, string, string, string) error {
			return domain.ErrInvalidCredentials
		},
	}
	h := NewProfileHandler(svc)

	c, _ := newJSONContext(t, http.MethodPut, "/change-password",
		`{"username":"alice","currentPassword":"wrong","newPassword":"NewPassw0rd"}`)
	if err := h.ChangePassword(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestProfileHandler_DeleteAccount(t *testing.T) {
	var deleted bool
	svc := &stubProfileService{
		deleteFn: func(_ context.Context, username, password string) error {
			if username != "alice" || password != "Passw0rd" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			deleted = true
			return nil
		},
	}
	h := NewProfileHandler(svc)

	c, rec := newJSONContext(t, http.MethodDelete, "/delete-account",
		`{"username":"alice","password":"Passw0rd"}`)
	if err := h.DeleteAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !deleted {
		t.Fatalf("expected 200 and deletion, got %d deleted=%v", rec.Code, deleted)
	}
}

func TestProfileHandler_ListUsers_EmptyIsArray(t *testing.T) {
	svc := &stubProfileService{
		listFn: func(context.Context) ([]*domain.User, error) { return nil, nil },
	}
	h := NewProfileHandler(svc)

	c, rec := newJSONContext(t, http.MethodGet, "/users", "")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestProfileHandler_SignupsOverTime(t *testing.T) {
	svc := &stubProfileService{
		signupsFn: func(context.Context) ([]ports.SignupBucket, error) {
			return []ports.SignupBucket{{Date: "2026-08-29", Count: 3}}, nil
		},
	}
	h := NewProfileHandler(svc)

	c, rec := newJSONContext(t, http.MethodGet, "/user-signups-over-time", "")
	if err := h.SignupsOverTime(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var buckets []ports.SignupBucket
	if err := json.Unmarshal(rec.Body.Bytes(), &buckets); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Count != 3 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
}
