package auth

import (
	"crypto/subtle"
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role is an authorisation tier. Roles are free-form strings in the
// store; these are the two the application assigns itself.
type Role string

const (
	// RoleUser is a regular back-office user. This is the default role
	// applied when an account is created without one.
	RoleUser Role = "user"

	// RoleAdmin can manage user accounts in addition to everything
	// RoleUser can do.
	RoleAdmin Role = "admin"
)

// User represents an account in the credential store.
//
// Passwords are stored and compared as plaintext exact-match values.
// This preserves the documented login semantics of the system this
// service replaces; it is a known hazard recorded in DESIGN.md and the
// comparison is at least constant-time.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // never serialised
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PasswordMatches reports whether the candidate equals the stored
// password. The comparison is constant-time.
func (u *User) PasswordMatches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(candidate)) == 1
}

// Sentinel errors for auth operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("invalid token")
)
