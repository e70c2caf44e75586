package service

import (
	"context"
	"log/slog"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/services"
)

// refreshAfter runs mutate and, once it has succeeded, refresh. The
// mutation's error is returned; a failed refresh is only logged because the
// list state already records it and the write did happen.
func refreshAfter(ctx context.Context, logger *slog.Logger, op string, mutate func() error, refresh func(context.Context) error) error {
	if err := mutate(); err != nil {
		return err
	}
	if err := refresh(ctx); err != nil {
		logger.Warn("refresh after mutation failed", "op", op, "error", err)
	}
	return nil
}

// currentUser returns the logged-in user or ErrNoSession
func currentUser(session services.Session) (*models.User, error) {
	user, ok := session.Current()
	if !ok {
		return nil, domain.ErrNoSession
	}
	return user, nil
}

// requireAdmin gates administration before any network call
func requireAdmin(session services.Session, action string) error {
	if _, err := currentUser(session); err != nil {
		return err
	}
	if !session.IsAdmin() {
		return &domain.ForbiddenError{Message: "Only administrators can " + action}
	}
	return nil
}
