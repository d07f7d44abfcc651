package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var ErrOTPNotRequested = errors.New("otp expired or not requested")
var ErrOTPExpired = errors.New("otp has expired")
var ErrOTPMismatch = errors.New("invalid otp")

// OTPEntry is a one-time password recovery code. At most one live entry exists
// per email; it is consumed on successful verification or on expiry detection.
type OTPEntry struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry has lapsed at the given instant.
func (e OTPEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// GenerateOTP returns a cryptographically random 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
