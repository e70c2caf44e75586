package repositories

import (
	"context"

	"arkive/internal/domain/models"
)

// AuthRepository talks to the auth service
type AuthRepository interface {
	// Login exchanges credentials for a bearer token and the user profile
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)

	// Logout invalidates token on the backend.
	// The token is passed explicitly because the local session may already be gone.
	Logout(ctx context.Context, token string) error
}
