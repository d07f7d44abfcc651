package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// OTPRegistry stores one-time recovery codes in Redis so they survive process
// restarts and are shared across instances. Expiry is enforced twice: by the
// Redis key TTL and by the expiry timestamp carried in the entry itself.
// Key format: otp:<email>
type OTPRegistry struct {
	client *redis.Client
}

func NewOTPRegistry(client *redis.Client) *OTPRegistry {
	return &OTPRegistry{client: client}
}

var _ ports.OTPRegistry = (*OTPRegistry)(nil)

// Put stores the entry, overwriting any prior live code for the same email.
func (r *OTPRegistry) Put(ctx context.Context, entry domain.OTPEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode otp entry: %w", err)
	}
	if err := r.client.Set(ctx, r.key(entry.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store otp entry: %w", err)
	}
	return nil
}

func (r *OTPRegistry) Get(ctx context.Context, email string) (domain.OTPEntry, error) {
	raw, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.OTPEntry{}, domain.ErrOTPNotRequested
		}
		return domain.OTPEntry{}, fmt.Errorf("fetch otp entry: %w", err)
	}

	var entry domain.OTPEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.OTPEntry{}, fmt.Errorf("decode otp entry: %w", err)
	}
	return entry, nil
}

func (r *OTPRegistry) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("delete otp entry: %w", err)
	}
	return nil
}

func (r *OTPRegistry) key(email string) string {
	return fmt.Sprintf("otp:%s", email)
}
