package rest

import (
	"errors"
	"fmt"

	"arkive/internal/domain"
)

// IsConflictError checks if the backend answered 409
func IsConflictError(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}

// wrapConflict turns a 409 into a ConflictError naming the resource, keeping
// the backend's message. Other errors are wrapped with op.
func wrapConflict(err error, op, resourceType string) error {
	if err == nil {
		return nil
	}
	if IsConflictError(err) {
		msg := domain.UserMessage(err, "")
		if msg == "" {
			msg = resourceType + " already exists"
		}
		return &domain.ConflictError{Message: msg, ResourceType: resourceType}
	}
	return fmt.Errorf("%s: %w", op, err)
}
