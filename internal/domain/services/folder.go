package services

import (
	"context"

	"arkive/internal/domain/models"
)

// FolderService is the folder directory: the department-scoped folder list,
// folder mutations and "current folder" navigation
type FolderService interface {
	// FetchFolders loads the folders visible to the session's departments
	FetchFolders(ctx context.Context) error

	// Folders returns the current folder list snapshot
	Folders() models.List[models.Folder]

	// Retry re-fetches after a failed fetch
	Retry(ctx context.Context) error

	// CreateOrUpdateFolder creates a folder, or updates the one selected with BeginEdit
	CreateOrUpdateFolder(ctx context.Context, title string, departments []string) (*models.Folder, error)

	// BeginEdit selects the folder the next CreateOrUpdateFolder updates
	BeginEdit(id int64) error

	// CancelEdit returns to create mode
	CancelEdit()

	// Editing returns the folder being edited, if any
	Editing() (*models.Folder, bool)

	// DeleteFolder deletes a folder and re-fetches
	DeleteFolder(ctx context.Context, id int64) error

	// NavigateToFolder opens a folder from the current list
	NavigateToFolder(id int64) error

	// NavigateBack returns to the previously open folder, or to the root
	NavigateBack()

	// CurrentFolder returns the open folder, if any
	CurrentFolder() (*models.Folder, bool)

	// Reset clears all state
	Reset()
}
