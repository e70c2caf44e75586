package rest

import (
	"context"
	"errors"
	"fmt"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/httputil"
)

// RESTAuthRepository implements the AuthRepository interface
type RESTAuthRepository struct {
	client *httputil.Client
}

// NewAuthRepository creates a new auth repository.
// config.API must not carry the session's auth transport: login happens
// before there is a session and logout pins its token explicitly.
func NewAuthRepository(config *RepositoryConfig) repositories.AuthRepository {
	return &RESTAuthRepository{
		client: config.API,
	}
}

// Login exchanges credentials for a bearer token and the user profile
func (r *RESTAuthRepository) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var resp loginResponse
	if err := r.client.Post(ctx, "auth/login", creds, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	token := resp.bearer()
	if token == "" {
		return nil, errors.New("login: response carried no token")
	}

	return &models.LoginResult{
		Token:        token,
		RefreshToken: resp.RefreshToken,
		User:         resp.User.toModel(),
	}, nil
}

// Logout invalidates token on the backend
func (r *RESTAuthRepository) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrNoSession
	}
	ctx = httputil.WithBearerToken(ctx, token)
	if err := r.client.Post(ctx, "auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
