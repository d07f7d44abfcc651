package domain

import (
	"errors"
	"time"
)

// TokenPurpose scopes a signed token to the single flow allowed to consume it.
type TokenPurpose string

const (
	PurposeVerify  TokenPurpose = "verify"
	PurposeReset   TokenPurpose = "reset"
	PurposeSession TokenPurpose = "session"
)

var ErrTokenInvalid = errors.New("invalid token")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenPurpose = errors.New("token presented to wrong consumer")

// TokenClaims is the payload embedded in every signed token. Which fields are
// populated depends on the purpose: verification and reset tokens carry only
// the email, session tokens carry the user identity.
type TokenClaims struct {
	UserID   string
	Username string
	Email    string
	Role     Role
	Purpose  TokenPurpose
	IssuedAt time.Time
	ExpireAt time.Time
}
