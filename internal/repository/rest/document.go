package rest

import (
	"context"
	"fmt"
	"strconv"

	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/httputil"
)

// RESTDocumentRepository implements the DocumentRepository interface
type RESTDocumentRepository struct {
	client *httputil.Client
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &RESTDocumentRepository{client: config.API}
}

// documentFilterRequest is the body of POST /documents/filter
type documentFilterRequest struct {
	Departments []string `json:"departments"`
	NoFolderID  bool     `json:"noFolderId"`
}

// ListUnfiled lists documents without a folder in any of departments
func (r *RESTDocumentRepository) ListUnfiled(ctx context.Context, departments []string) ([]models.Document, error) {
	body := documentFilterRequest{Departments: departments, NoFolderID: true}

	var dtos []documentDTO
	if err := r.client.Post(ctx, "documents/filter", body, &dtos); err != nil {
		return nil, fmt.Errorf("list unfiled documents: %w", err)
	}
	return documentsToModels(dtos), nil
}

// ListByFolder lists the documents of one folder
func (r *RESTDocumentRepository) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	var dtos []documentDTO
	if err := r.client.Get(ctx, idPath("documents/folder", folderID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("list folder %d documents: %w", folderID, err)
	}
	return documentsToModels(dtos), nil
}

// ListByDepartment lists every document of one department
func (r *RESTDocumentRepository) ListByDepartment(ctx context.Context, department string) ([]models.Document, error) {
	var dtos []documentDTO
	if err := r.client.Get(ctx, namePath("documents/department", department), nil, &dtos); err != nil {
		return nil, fmt.Errorf("list %s documents: %w", department, err)
	}
	return documentsToModels(dtos), nil
}

// GetByID retrieves a document by ID
func (r *RESTDocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	var dto documentDTO
	if err := r.client.Get(ctx, idPath("documents", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	doc := dto.toModel()
	return &doc, nil
}

// Upload creates a document from file content
func (r *RESTDocumentRepository) Upload(ctx context.Context, req *models.UploadDocumentRequest) (*models.Document, error) {
	fields := map[string]string{
		"title":      req.Title,
		"department": req.Department,
		"ownerId":    strconv.FormatInt(req.OwnerID, 10),
		"ownerName":  req.OwnerName,
		"category":   req.Category,
	}
	if req.FolderID != nil {
		fields["folderId"] = strconv.FormatInt(*req.FolderID, 10)
	}

	var dto documentDTO
	if err := r.client.Upload(ctx, "documents", fields, "file", req.FileName, req.File, &dto); err != nil {
		return nil, wrapConflict(err, "upload document", "document")
	}
	doc := dto.toModel()
	return &doc, nil
}

// Update replaces a document's metadata with doc.
// The folder is always sent so that null detaches the document; an empty
// category is sent as null.
func (r *RESTDocumentRepository) Update(ctx context.Context, doc *models.Document) (*models.Document, error) {
	body := map[string]any{
		"title":      doc.Title,
		"department": doc.Department,
		"url":        doc.URL,
		"ownerId":    doc.OwnerID,
		"ownerName":  doc.Owner,
	}
	category := httputil.OptionalString{Present: true}
	if doc.Category != "" {
		category = httputil.SetString(doc.Category)
	}
	category.AppendTo(body, "category")
	folderID := httputil.Null()
	if doc.FolderID != nil {
		folderID = httputil.SetInt64(*doc.FolderID)
	}
	folderID.AppendTo(body, "folderId")

	var dto documentDTO
	if err := r.client.Put(ctx, idPath("documents", doc.ID), body, &dto); err != nil {
		return nil, wrapConflict(err, fmt.Sprintf("update document %d", doc.ID), "document")
	}
	updated := dto.toModel()
	return &updated, nil
}

// Delete deletes a document
func (r *RESTDocumentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, idPath("documents", id)); err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	return nil
}
