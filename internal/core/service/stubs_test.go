package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// stubUserRepo is an in-memory UserRepository keyed by email, mirroring the
// repository contract including case-insensitive username lookup.
type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailRegistered
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) {
			return nil, domain.ErrUsernameTaken
		}
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	if googleID == "" {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.GoogleID == googleID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetVerified(_ context.Context, email string) error {
	u, ok := r.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = true
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	u, ok := r.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, currentEmail string, update ports.ProfileUpdate) error {
	u, ok := r.users[currentEmail]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, currentEmail)
	u.Email = update.Email
	u.Username = update.Username
	u.Phone = update.Phone
	r.users[u.Email] = u
	return nil
}

func (r *stubUserRepo) LinkGoogleID(_ context.Context, email, googleID string) error {
	u, ok := r.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.GoogleID = googleID
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) SignupsOverTime(_ context.Context) ([]ports.SignupBucket, error) {
	counts := make(map[string]int64)
	for _, u := range r.users {
		counts[u.CreatedAt.Format("2006-01-02")]++
	}
	out := make([]ports.SignupBucket, 0, len(counts))
	for date, n := range counts {
		out = append(out, ports.SignupBucket{Date: date, Count: n})
	}
	return out, nil
}

// stubRegistry is an in-memory OTPRegistry. TTL is ignored; expiry is driven
// by the entry's own timestamp, which tests manipulate directly.
type stubRegistry struct {
	entries map[string]domain.OTPEntry
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{entries: make(map[string]domain.OTPEntry)}
}

func (r *stubRegistry) Put(_ context.Context, entry domain.OTPEntry, _ time.Duration) error {
	r.entries[entry.Email] = entry
	return nil
}

func (r *stubRegistry) Get(_ context.Context, email string) (domain.OTPEntry, error) {
	entry, ok := r.entries[email]
	if !ok {
		return domain.OTPEntry{}, domain.ErrOTPNotRequested
	}
	return entry, nil
}

func (r *stubRegistry) Delete(_ context.Context, email string) error {
	delete(r.entries, email)
	return nil
}

// captureDispatcher records enqueued mail instead of delivering it.
type captureDispatcher struct {
	mails []ports.Mail
}

func (d *captureDispatcher) Enqueue(mail ports.Mail) {
	d.mails = append(d.mails, mail)
}

func (d *captureDispatcher) last() ports.Mail {
	if len(d.mails) == 0 {
		return ports.Mail{}
	}
	return d.mails[len(d.mails)-1]
}
