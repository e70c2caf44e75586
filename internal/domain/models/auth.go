package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the backend's access-token claims the client reads.
// Flask-JWT-Extended puts the user id in "sub" and adds "fresh" and "type".
type TokenClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, exp, iat, jti, ...)
	Type                 string `json:"type"`
	Fresh                bool   `json:"fresh"`
}

// TokenInfo is a display-only view of the stored bearer token.
type TokenInfo struct {
	Subject   string
	Type      string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is what the auth endpoint returns on success.
type LoginResult struct {
	Token        string
	RefreshToken string
	User         User
}

// Session is the persisted login state: bearer token plus current user.
type Session struct {
	Token   string    `json:"token" yaml:"token"`
	User    User      `json:"user" yaml:"user"`
	SavedAt time.Time `json:"saved_at" yaml:"saved_at"`
}
