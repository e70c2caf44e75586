// Package session holds the authenticated user and bearer token, persisted
// to a durable local store so that consecutive commands share one login.
package session

import (
	"context"

	"arkive/internal/domain/models"
)

// Store persists the session between runs.
// Load returns (nil, nil) when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
