package repositories

import (
	"context"

	"arkive/internal/domain/models"
)

// UserRepository defines data access operations for user administration
type UserRepository interface {
	// List returns one page of users and the total matching count
	List(ctx context.Context, query models.UserQuery) (*models.UserPage, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Create creates a new user
	Create(ctx context.Context, req *models.UserRequest) (*models.User, error)

	// Update updates a user
	Update(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error)

	// Delete deletes a user
	Delete(ctx context.Context, id int64) error
}

// DepartmentRepository defines data access operations for the department catalogue
type DepartmentRepository interface {
	// List returns every department
	List(ctx context.Context) ([]models.Department, error)

	// Create adds a department
	Create(ctx context.Context, name string) (*models.Department, error)

	// Delete removes a department
	Delete(ctx context.Context, id int64) error
}
