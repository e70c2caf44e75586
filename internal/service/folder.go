package service

import (
	"context"
	"fmt"
	"log/slog"
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

type folderService struct {
	mu         sync.Mutex
	folderRepo repositories.FolderRepository
	session    services.Session
	view       *capabilities.ViewCapabilities
	logger     *slog.Logger

	list    listState[models.Folder]
	editing *models.Folder
	history []models.Folder // open folders, innermost last
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	session services.Session,
	registry *capabilities.Registry,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		session:    session,
		view:       registry.MustView(capabilities.ViewFolders),
		logger:     logger,
	}
}

// FetchFolders loads the folders visible to the session's departments.
// The backend result is re-checked against the scope.
func (s *folderService) FetchFolders(ctx context.Context) error {
	scope := s.session.Scope()

	s.mu.Lock()
	s.list.begin()
	s.mu.Unlock()

	if len(scope) == 0 {
		s.mu.Lock()
		s.list.succeed(nil)
		s.mu.Unlock()
		return nil
	}

	folders, err := s.folderRepo.ListByDepartments(ctx, scope)
	if err != nil {
		s.logger.Error("failed to fetch folders", "departments", scope, "error", err)
		s.mu.Lock()
		s.list.fail(domain.UserMessage(err, "Failed to load folders"))
		s.mu.Unlock()
		return err
	}

	visible := make([]models.Folder, 0, len(folders))
	for i := range folders {
		if folders[i].VisibleTo(scope) {
			visible = append(visible, folders[i])
		}
	}
	if dropped := len(folders) - len(visible); dropped > 0 {
		s.logger.Warn("dropped folders outside department scope", "count", dropped)
	}

	s.mu.Lock()
	s.list.succeed(visible)
	s.mu.Unlock()

	s.logger.Debug("folders fetched", "count", len(visible))
	return nil
}

// Folders returns the current folder list snapshot
func (s *folderService) Folders() models.List[models.Folder] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.snapshot()
}

// Retry re-fetches after a failed fetch
func (s *folderService) Retry(ctx context.Context) error {
	s.mu.Lock()
	failed := s.list.status == models.StatusError
	s.mu.Unlock()
	if !failed {
		return nil
	}
	return s.FetchFolders(ctx)
}

// CreateOrUpdateFolder creates a folder, or updates the one selected with
// BeginEdit. Input is validated before any network call.
func (s *folderService) CreateOrUpdateFolder(ctx context.Context, title string, departments []string) (*models.Folder, error) {
	if _, err := currentUser(s.session); err != nil {
		return nil, err
	}

	req := &models.FolderRequest{
		Title:       strings.TrimSpace(title),
		Departments: normalizeNames(departments),
	}
	if err := s.validateFolderRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	editing := s.editing
	s.mu.Unlock()

	var folder *models.Folder
	err := refreshAfter(ctx, s.logger, "save folder", func() error {
		var err error
		if editing != nil {
			folder, err = s.folderRepo.Update(ctx, editing.ID, req)
		} else {
			folder, err = s.folderRepo.Create(ctx, req)
		}
		if err != nil {
			s.logger.Error("failed to save folder", "title", req.Title, "error", err)
			return err
		}

		s.mu.Lock()
		s.editing = nil
		s.mu.Unlock()
		return nil
	}, s.FetchFolders)
	if err != nil {
		return nil, err
	}

	if editing != nil {
		s.logger.Info("folder updated", "id", folder.ID, "title", folder.Title)
	} else {
		s.logger.Info("folder created", "id", folder.ID, "title", folder.Title, "departments", folder.Departments)
	}
	return folder, nil
}

func (s *folderService) validateFolderRequest(req *models.FolderRequest) error {
	scope := make([]any, 0)
	for _, d := range s.session.Scope() {
		scope = append(scope, d)
	}

	departmentRules := []validation.Rule{
		validation.Required.Error("select at least one department"),
		validation.Each(validation.In(scope...).Error("department is outside your departments")),
	}
	if !s.view.MultiDepartment {
		departmentRules = append(departmentRules, validation.Length(1, 1).Error("select exactly one department"))
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("folder title is required"),
			validation.RuneLength(1, config.MaxFolderTitleLength),
		),
		validation.Field(&req.Departments, departmentRules...),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// BeginEdit selects the folder the next CreateOrUpdateFolder updates
func (s *folderService) BeginEdit(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.find(id)
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %d is not in the list", id)}
	}
	s.editing = &folder
	return nil
}

// CancelEdit returns to create mode
func (s *folderService) CancelEdit() {
	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()
}

// Editing returns the folder being edited, if any
func (s *folderService) Editing() (*models.Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return nil, false
	}
	folder := *s.editing
	return &folder, true
}

// DeleteFolder deletes a folder and re-fetches. A deleted folder is
// closed if it was open.
func (s *folderService) DeleteFolder(ctx context.Context, id int64) error {
	if _, err := currentUser(s.session); err != nil {
		return err
	}

	return refreshAfter(ctx, s.logger, "delete folder", func() error {
		if err := s.folderRepo.Delete(ctx, id); err != nil {
			s.logger.Error("failed to delete folder", "id", id, "error", err)
			return err
		}

		s.mu.Lock()
		for i, f := range s.history {
			if f.ID == id {
				s.history = s.history[:i]
				break
			}
		}
		if s.editing != nil && s.editing.ID == id {
			s.editing = nil
		}
		s.mu.Unlock()

		s.logger.Info("folder deleted", "id", id)
		return nil
	}, s.FetchFolders)
}

// NavigateToFolder opens a folder from the current list
func (s *folderService) NavigateToFolder(id int64) error {
	if !s.view.FolderNavigation {
		return domain.NewValidationError("folder navigation is not available in the %s view", s.view.DisplayName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.find(id)
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %d is not in the list", id)}
	}
	if n := len(s.history); n > 0 && s.history[n-1].ID == id {
		return nil
	}
	s.history = append(s.history, folder)
	return nil
}

// NavigateBack returns to the previously open folder, or to the root
func (s *folderService) NavigateBack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.history); n > 0 {
		s.history = s.history[:n-1]
	}
}

// CurrentFolder returns the open folder, if any
func (s *folderService) CurrentFolder() (*models.Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.history)
	if n == 0 {
		return nil, false
	}
	folder := s.history[n-1]
	return &folder, true
}

// Reset clears all state
func (s *folderService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.reset()
	s.editing = nil
	s.history = nil
}

// find looks id up in the current list; callers hold mu
func (s *folderService) find(id int64) (models.Folder, bool) {
	for _, f := range s.list.items {
		if f.ID == id {
			return f, true
		}
	}
	return models.Folder{}, false
}

// normalizeNames trims names and drops blanks and duplicates, keeping order
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
