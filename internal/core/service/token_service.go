package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

// TokenService is the single signing authority for verification, reset and
// session tokens. HS256 with a shared secret; every other flow consumes this
// instead of signing inline.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

var _ ports.TokenService = (*TokenService)(nil)

type tokenClaims struct {
	Purpose  domain.TokenPurpose `json:"purpose"`
	UserID   string              `json:"user_id,omitempty"`
	Username string              `json:"username,omitempty"`
	Email    string              `json:"email,omitempty"`
	Role     domain.Role         `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Sign mints a token scoped to purpose, expiring after ttl.
func (s *TokenService) Sign(claims domain.TokenClaims, purpose domain.TokenPurpose, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	tc := tokenClaims{
		Purpose:  purpose,
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return t.SignedString(s.secret)
}

// Verify checks signature, expiry and purpose, in that order of disclosure:
// a forged token never learns whether its purpose would have matched.
func (s *TokenService) Verify(token string, expected domain.TokenPurpose) (domain.TokenClaims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.TokenClaims{}, domain.ErrTokenExpired
		}
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	if tc.Purpose != expected {
		return domain.TokenClaims{}, domain.ErrTokenPurpose
	}

	out := domain.TokenClaims{
		UserID:   tc.UserID,
		Username: tc.Username,
		Email:    tc.Email,
		Role:     tc.Role,
		Purpose:  tc.Purpose,
	}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		out.ExpireAt = tc.ExpiresAt.Time
	}
	return out, nil
}
