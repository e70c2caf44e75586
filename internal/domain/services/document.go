package services

import (
	"context"

	"arkive/internal/domain/models"
)

// DocumentService is the document directory: the unfiled list, per-folder
// lists, client-side search and filters, and document mutations
type DocumentService interface {
	// FetchDocuments loads the unfiled documents of the session's departments
	FetchDocuments(ctx context.Context) error

	// FetchFolderDocuments loads the documents of one folder
	FetchFolderDocuments(ctx context.Context, folderID int64) error

	// Documents returns the unfiled list snapshot
	Documents() models.List[models.Document]

	// FolderDocuments returns the open folder's list snapshot
	FolderDocuments() (folderID int64, list models.List[models.Document], ok bool)

	// Refresh re-fetches every list that has been loaded
	Refresh(ctx context.Context) error

	// Retry re-fetches lists in the error state
	Retry(ctx context.Context) error

	// SetSearchKey sets the title/owner search; lists go to Loading until Refresh
	SetSearchKey(key string)

	// SetFilters sets the department filter; lists go to Loading until Refresh
	SetFilters(department string) error

	// ResetFilters clears search and filters; lists go to Loading until Refresh
	ResetFilters()

	// Filter returns the active search and filters
	Filter() models.DocumentFilter

	// GetDocument retrieves one document in scope
	GetDocument(ctx context.Context, id int64) (*models.Document, error)

	// UploadDocument uploads a new document and re-fetches
	UploadDocument(ctx context.Context, req *models.UploadDocumentRequest) (*models.Document, error)

	// UpdateDocument applies a partial update and re-fetches
	UpdateDocument(ctx context.Context, id int64, req *models.UpdateDocumentRequest) (*models.Document, error)

	// DeleteDocument deletes a document and re-fetches
	DeleteDocument(ctx context.Context, id int64) error

	// ListByDepartment lists every document of one department in scope
	ListByDepartment(ctx context.Context, department string) ([]models.Document, error)

	// Reset clears all state
	Reset()
}
