package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"arkive/internal/capabilities"
	"arkive/internal/config"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/domain/services"
)

type documentService struct {
	mu         sync.Mutex
	docRepo    repositories.DocumentRepository
	session    services.Session
	mainView   *capabilities.ViewCapabilities
	folderView *capabilities.ViewCapabilities
	deptView   *capabilities.ViewCapabilities
	logger     *slog.Logger

	filter   models.DocumentFilter
	main     listState[models.Document]
	folder   listState[models.Document]
	folderID *int64
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	session services.Session,
	registry *capabilities.Registry,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		session:    session,
		mainView:   registry.MustView(capabilities.ViewDocuments),
		folderView: registry.MustView(capabilities.ViewFolderDocuments),
		deptView:   registry.MustView(capabilities.ViewDepartmentDocuments),
		logger:     logger,
	}
}

// FetchDocuments loads the unfiled documents of the session's departments.
// The backend already filters by department and folder; both are checked
// again here before the search and department filter are applied.
func (s *documentService) FetchDocuments(ctx context.Context) error {
	scope := s.session.Scope()

	s.mu.Lock()
	s.main.begin()
	filter := viewFilter(s.mainView, s.filter)
	s.mu.Unlock()

	if len(scope) == 0 {
		s.mu.Lock()
		s.main.succeed(nil)
		s.mu.Unlock()
		return nil
	}

	docs, err := s.docRepo.ListUnfiled(ctx, scope)
	if err != nil {
		s.logger.Error("failed to fetch documents", "departments", scope, "error", err)
		s.mu.Lock()
		s.main.fail(domain.UserMessage(err, "Failed to load documents"))
		s.mu.Unlock()
		return err
	}

	rows := filterDocuments(docs, scope, filter, func(d *models.Document) bool {
		return !d.Filed()
	})

	s.mu.Lock()
	s.main.succeed(rows)
	s.mu.Unlock()

	s.logger.Debug("documents fetched", "received", len(docs), "shown", len(rows))
	return nil
}

// FetchFolderDocuments loads the documents of one folder. It becomes the
// open folder list that Refresh keeps up to date.
func (s *documentService) FetchFolderDocuments(ctx context.Context, folderID int64) error {
	scope := s.session.Scope()

	s.mu.Lock()
	if s.folderID == nil || *s.folderID != folderID {
		s.folder.reset()
	}
	s.folderID = &folderID
	s.folder.begin()
	filter := viewFilter(s.folderView, s.filter)
	s.mu.Unlock()

	if len(scope) == 0 {
		s.mu.Lock()
		s.folder.succeed(nil)
		s.mu.Unlock()
		return nil
	}

	docs, err := s.docRepo.ListByFolder(ctx, folderID)
	if err != nil {
		s.logger.Error("failed to fetch folder documents", "folder_id", folderID, "error", err)
		s.mu.Lock()
		s.folder.fail(domain.UserMessage(err, "Failed to load folder documents"))
		s.mu.Unlock()
		return err
	}

	rows := filterDocuments(docs, scope, filter, func(d *models.Document) bool {
		return d.InFolder(folderID)
	})

	s.mu.Lock()
	if s.folderID != nil && *s.folderID == folderID {
		s.folder.succeed(rows)
	}
	s.mu.Unlock()

	s.logger.Debug("folder documents fetched", "folder_id", folderID, "received", len(docs), "shown", len(rows))
	return nil
}

// filterDocuments keeps documents that pass keep, belong to a department in
// scope and match filter
func filterDocuments(docs []models.Document, scope []string, filter models.DocumentFilter, keep func(*models.Document) bool) []models.Document {
	rows := make([]models.Document, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		if !keep(d) || !slices.Contains(scope, d.Department) || !filter.Matches(d) {
			continue
		}
		rows = append(rows, *d)
	}
	return rows
}

// viewFilter drops the department filter in views without one
func viewFilter(view *capabilities.ViewCapabilities, filter models.DocumentFilter) models.DocumentFilter {
	if !view.DepartmentFilter {
		filter.Department = ""
	}
	return filter
}

// Documents returns the unfiled list snapshot
func (s *documentService) Documents() models.List[models.Document] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.main.snapshot()
}

// FolderDocuments returns the open folder's list snapshot
func (s *documentService) FolderDocuments() (int64, models.List[models.Document], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folderID == nil {
		return 0, models.List[models.Document]{}, false
	}
	return *s.folderID, s.folder.snapshot(), true
}

// Refresh re-fetches every list that has been loaded, the unfiled list
// when none has
func (s *documentService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	mainLoaded := s.main.loaded
	folderID := s.folderID
	s.mu.Unlock()

	var errs []error
	if mainLoaded || folderID == nil {
		errs = append(errs, s.FetchDocuments(ctx))
	}
	if folderID != nil {
		errs = append(errs, s.FetchFolderDocuments(ctx, *folderID))
	}
	return errors.Join(errs...)
}

// Retry re-fetches lists in the error state
func (s *documentService) Retry(ctx context.Context) error {
	s.mu.Lock()
	mainFailed := s.main.status == models.StatusError
	folderFailed := s.folder.status == models.StatusError && s.folderID != nil
	var folderID int64
	if folderFailed {
		folderID = *s.folderID
	}
	s.mu.Unlock()

	var errs []error
	if mainFailed {
		errs = append(errs, s.FetchDocuments(ctx))
	}
	if folderFailed {
		errs = append(errs, s.FetchFolderDocuments(ctx, folderID))
	}
	return errors.Join(errs...)
}

// SetSearchKey sets the title/owner search
func (s *documentService) SetSearchKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SearchKey = strings.TrimSpace(key)
	s.invalidate()
}

// SetFilters sets the department filter; "" clears it
func (s *documentService) SetFilters(department string) error {
	department = strings.TrimSpace(department)
	if department != "" && !s.mainView.DepartmentFilter && !s.folderView.DepartmentFilter {
		return domain.NewValidationError("department filter is not available in the %s view", s.mainView.DisplayName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Department = department
	s.invalidate()
	return nil
}

// ResetFilters clears search and filters
func (s *documentService) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = models.DocumentFilter{}
	s.invalidate()
}

// invalidate moves Ready lists back to Loading; callers hold mu
func (s *documentService) invalidate() {
	s.main.invalidate()
	if s.folderID != nil {
		s.folder.invalidate()
	}
}

// Filter returns the active search and filters
func (s *documentService) Filter() models.DocumentFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// GetDocument retrieves one document. Documents outside the session's
// departments are reported as not found.
func (s *documentService) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	if _, err := currentUser(s.session); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(s.session.Scope(), doc.Department) {
		s.logger.Warn("document outside department scope", "id", id, "department", doc.Department)
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %d not found", id)}
	}
	return doc, nil
}

// UploadDocument validates and uploads a new document, then re-fetches.
// An empty title defaults to the file name without its extension; owner
// fields default to the logged-in user.
func (s *documentService) UploadDocument(ctx context.Context, req *models.UploadDocumentRequest) (*models.Document, error) {
	user, err := currentUser(s.session)
	if err != nil {
		return nil, err
	}

	upload := *req
	upload.FileName = strings.TrimSpace(upload.FileName)
	upload.Title = strings.TrimSpace(upload.Title)
	upload.Department = strings.TrimSpace(upload.Department)
	upload.Category = strings.TrimSpace(upload.Category)
	if upload.Title == "" && upload.FileName != "" {
		upload.Title = models.TitleFromFileName(upload.FileName)
	}
	if upload.OwnerID == 0 {
		upload.OwnerID = user.ID
	}
	if upload.OwnerName == "" {
		upload.OwnerName = user.Name
	}

	if err := s.validateUpload(&upload); err != nil {
		return nil, err
	}

	var doc *models.Document
	err = refreshAfter(ctx, s.logger, "upload document", func() error {
		var err error
		doc, err = s.docRepo.Upload(ctx, &upload)
		if err != nil {
			s.logger.Error("failed to upload document", "file", upload.FileName, "error", err)
			return err
		}
		return nil
	}, s.Refresh)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document uploaded",
		"id", doc.ID,
		"title", doc.Title,
		"department", doc.Department,
		"folder_id", upload.FolderID,
	)
	return doc, nil
}

func (s *documentService) validateUpload(req *models.UploadDocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.File, validation.Required.Error("a file is required")),
		validation.Field(&req.FileName, validation.Required.Error("a file name is required")),
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, config.MaxDocumentTitleLength),
		),
		validation.Field(&req.Department,
			validation.Required.Error("department is required"),
			validation.In(scopeValues(s.session.Scope())...).Error("department is outside your departments"),
		),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// UpdateDocument merges req into the current document and stores it. The
// backend replaces the whole document, so the current version is read first.
func (s *documentService) UpdateDocument(ctx context.Context, id int64, req *models.UpdateDocumentRequest) (*models.Document, error) {
	patch := *req
	if err := s.validateUpdate(&patch); err != nil {
		return nil, err
	}

	current, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(*current)

	var doc *models.Document
	err = refreshAfter(ctx, s.logger, "update document", func() error {
		var err error
		doc, err = s.docRepo.Update(ctx, &merged)
		if err != nil {
			s.logger.Error("failed to update document", "id", id, "error", err)
			return err
		}
		return nil
	}, s.Refresh)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated", "id", id, "title", doc.Title, "folder_id", doc.FolderID)
	return doc, nil
}

func (s *documentService) validateUpdate(req *models.UpdateDocumentRequest) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Department != nil {
		department := strings.TrimSpace(*req.Department)
		req.Department = &department
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty.Error("title cannot be empty"),
			validation.RuneLength(1, config.MaxDocumentTitleLength),
		),
		validation.Field(&req.Department,
			validation.NilOrNotEmpty.Error("department cannot be empty"),
			validation.In(scopeValues(s.session.Scope())...).Error("department is outside your departments"),
		),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// DeleteDocument deletes a document and re-fetches
func (s *documentService) DeleteDocument(ctx context.Context, id int64) error {
	if _, err := currentUser(s.session); err != nil {
		return err
	}

	return refreshAfter(ctx, s.logger, "delete document", func() error {
		if err := s.docRepo.Delete(ctx, id); err != nil {
			s.logger.Error("failed to delete document", "id", id, "error", err)
			return err
		}
		s.logger.Info("document deleted", "id", id)
		return nil
	}, s.Refresh)
}

// ListByDepartment lists every document of one department in scope, filed
// or not. The current search applies; the department filter does not.
func (s *documentService) ListByDepartment(ctx context.Context, department string) ([]models.Document, error) {
	if _, err := currentUser(s.session); err != nil {
		return nil, err
	}
	department = strings.TrimSpace(department)
	scope := s.session.Scope()
	if !slices.Contains(scope, department) {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("%s is not one of your departments", department)}
	}

	s.mu.Lock()
	filter := viewFilter(s.deptView, s.filter)
	s.mu.Unlock()

	docs, err := s.docRepo.ListByDepartment(ctx, department)
	if err != nil {
		s.logger.Error("failed to list department documents", "department", department, "error", err)
		return nil, err
	}
	return filterDocuments(docs, []string{department}, filter, func(*models.Document) bool {
		return true
	}), nil
}

// Reset clears all state
func (s *documentService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = models.DocumentFilter{}
	s.main.reset()
	s.folder.reset()
	s.folderID = nil
}

func scopeValues(scope []string) []any {
	values := make([]any, len(scope))
	for i, d := range scope {
		values[i] = d
	}
	return values
}
