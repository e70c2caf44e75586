package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"arkive/internal/domain/models"
)

// ParseToken decodes the bearer token's claims for display.
// The signature is not checked: the backend verifies every request, and an
// expired token still surfaces as a 401 on the next call.
func ParseToken(token string) (*models.TokenInfo, error) {
	claims := &models.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	info := &models.TokenInfo{
		Subject: claims.Subject,
		Type:    claims.Type,
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		info.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		info.ExpiresAt = &t
	}
	return info, nil
}
