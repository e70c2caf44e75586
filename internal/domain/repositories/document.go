package repositories

import (
	"context"

	"arkive/internal/domain/models"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// ListUnfiled lists documents without a folder in any of departments
	ListUnfiled(ctx context.Context, departments []string) ([]models.Document, error)

	// ListByFolder lists the documents of one folder
	ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error)

	// ListByDepartment lists every document of one department
	ListByDepartment(ctx context.Context, department string) ([]models.Document, error)

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id int64) (*models.Document, error)

	// Upload creates a document from file content
	Upload(ctx context.Context, req *models.UploadDocumentRequest) (*models.Document, error)

	// Update replaces a document's metadata with doc
	Update(ctx context.Context, doc *models.Document) (*models.Document, error)

	// Delete deletes a document
	Delete(ctx context.Context, id int64) error
}
