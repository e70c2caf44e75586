package services

import (
	"context"

	"arkive/internal/domain/models"
)

// Session is what the directory services need from the session store
type Session interface {
	// Current returns the logged-in user
	Current() (*models.User, bool)

	// Scope returns the departments that scope folder and document queries
	Scope() []string

	// IsAdmin reports whether the logged-in user has the Admin role
	IsAdmin() bool

	// UpdateCurrentUser overwrites the persisted and in-memory user
	UpdateCurrentUser(ctx context.Context, user models.User) error
}
