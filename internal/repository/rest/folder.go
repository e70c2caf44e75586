package rest

import (
	"context"
	"fmt"

	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/httputil"
)

// RESTFolderRepository implements the FolderRepository interface
type RESTFolderRepository struct {
	client *httputil.Client
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &RESTFolderRepository{client: config.API}
}

// ListByDepartments lists folders visible to any of departments
func (r *RESTFolderRepository) ListByDepartments(ctx context.Context, departments []string) ([]models.Folder, error) {
	var dtos []folderDTO
	if err := r.client.Get(ctx, "folders/departments", departmentsQuery(departments), &dtos); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	folders := make([]models.Folder, 0, len(dtos))
	for i := range dtos {
		folders = append(folders, dtos[i].toModel())
	}
	return folders, nil
}

// GetByID retrieves a folder by ID
func (r *RESTFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	var dto folderDTO
	if err := r.client.Get(ctx, idPath("folders", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("get folder %d: %w", id, err)
	}
	folder := dto.toModel()
	return &folder, nil
}

// Create creates a new folder
func (r *RESTFolderRepository) Create(ctx context.Context, req *models.FolderRequest) (*models.Folder, error) {
	var dto folderDTO
	if err := r.client.Post(ctx, "folders", folderBody(req), &dto); err != nil {
		return nil, wrapConflict(err, "create folder", "folder")
	}
	folder := dto.toModel()
	return &folder, nil
}

// Update replaces a folder's title and departments
func (r *RESTFolderRepository) Update(ctx context.Context, id int64, req *models.FolderRequest) (*models.Folder, error) {
	var dto folderDTO
	if err := r.client.Put(ctx, idPath("folders", id), folderBody(req), &dto); err != nil {
		return nil, wrapConflict(err, fmt.Sprintf("update folder %d", id), "folder")
	}
	folder := dto.toModel()
	return &folder, nil
}

// Delete deletes a folder
func (r *RESTFolderRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, idPath("folders", id)); err != nil {
		return fmt.Errorf("delete folder %d: %w", id, err)
	}
	return nil
}
