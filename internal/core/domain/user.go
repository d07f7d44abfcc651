package domain

import (
	"errors"
	"time"
)

// Role is the privilege level of an account. A single tagged value is stored;
// anything boolean (admin or not) is derived from it.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin derives the admin flag from the role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

var ErrInvalidEmail = errors.New("invalid email format")
var ErrInvalidUsername = errors.New("invalid username: it must start with a letter and be up to 10 characters long")
var ErrInvalidPassword = errors.New("invalid password: it must be at least 8 characters long and include both letters and numbers")
var ErrInvalidRole = errors.New("invalid role")
var ErrEmailRegistered = errors.New("email already registered")
var ErrUsernameTaken = errors.New("username already taken")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAlreadyVerified = errors.New("email already verified")
var ErrMailDelivery = errors.New("mail delivery failed")

// User models an account record.
//
// PasswordHash is empty for accounts provisioned through OAuth linkage; such
// accounts authenticate only through their provider. Verified starts false and
// only ever transitions to true.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	Verified       bool      `json:"verified"`
	GoogleID       string    `json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
