package ports

import (
	"time"

	"github.com/breathscope/identity-api/internal/core/domain"
)

// TokenService signs and verifies time-bounded bearer tokens. Verification is a
// pure function of the shared signing secret and wall-clock time; there is no
// server-side revocation list.
type TokenService interface {
	Sign(claims domain.TokenClaims, purpose domain.TokenPurpose, ttl time.Duration) (string, error)
	// Verify fails with domain.ErrTokenInvalid on a bad signature or format,
	// domain.ErrTokenExpired past expiry, and domain.ErrTokenPurpose when the
	// token was minted for a different consumer.
	Verify(token string, expected domain.TokenPurpose) (domain.TokenClaims, error)
}
