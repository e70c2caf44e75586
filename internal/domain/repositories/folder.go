package repositories

import (
	"context"

	"arkive/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// ListByDepartments lists folders visible to any of departments
	ListByDepartments(ctx context.Context, departments []string) ([]models.Folder, error)

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// Create creates a new folder
	Create(ctx context.Context, req *models.FolderRequest) (*models.Folder, error)

	// Update replaces a folder's title and departments
	Update(ctx context.Context, id int64, req *models.FolderRequest) (*models.Folder, error)

	// Delete deletes a folder
	Delete(ctx context.Context, id int64) error
}
