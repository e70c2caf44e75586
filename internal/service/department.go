package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"arkive/internal/config"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/domain/services"
)

// DefaultDepartments is the catalogue used until the backend answers
var DefaultDepartments = []models.Department{
	{ID: 1, Name: "IT"},
	{ID: 2, Name: "Marketing"},
	{ID: 3, Name: "HR"},
	{ID: 4, Name: "Finance"},
	{ID: 5, Name: "Operations"},
}

type departmentService struct {
	mu       sync.Mutex
	deptRepo repositories.DepartmentRepository
	session  services.Session
	logger   *slog.Logger
	list     listState[models.Department]
}

// NewDepartmentService creates a new department service
func NewDepartmentService(
	deptRepo repositories.DepartmentRepository,
	session services.Session,
	logger *slog.Logger,
) services.DepartmentService {
	s := &departmentService{
		deptRepo: deptRepo,
		session:  session,
		logger:   logger,
	}
	s.Reset()
	return s
}

// FetchDepartments loads the catalogue. On failure the previous catalogue,
// initially the default one, stays in place.
func (s *departmentService) FetchDepartments(ctx context.Context) error {
	s.mu.Lock()
	s.list.begin()
	s.mu.Unlock()

	deps, err := s.deptRepo.List(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch departments, keeping current catalogue", "error", err)
		s.mu.Lock()
		s.list.fail(domain.UserMessage(err, "Failed to load departments"))
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.list.succeed(deps)
	s.mu.Unlock()
	return nil
}

// Departments returns the catalogue snapshot
func (s *departmentService) Departments() models.List[models.Department] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.snapshot()
}

// Lookup finds a department by name, case-insensitively
func (s *departmentService) Lookup(name string) (models.Department, bool) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.list.items {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return models.Department{}, false
}

// AddDepartment creates a department and re-fetches
func (s *departmentService) AddDepartment(ctx context.Context, name string) (*models.Department, error) {
	if err := requireAdmin(s.session, "manage departments"); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("department name is required"),
		validation.RuneLength(1, config.MaxDepartmentNameLength),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if _, exists := s.Lookup(name); exists {
		return nil, &domain.ConflictError{Message: "Department " + name + " already exists", ResourceType: "department"}
	}

	var dep *models.Department
	err = refreshAfter(ctx, s.logger, "add department", func() error {
		var err error
		dep, err = s.deptRepo.Create(ctx, name)
		if err != nil {
			s.logger.Error("failed to create department", "name", name, "error", err)
			return err
		}
		return nil
	}, s.FetchDepartments)
	if err != nil {
		return nil, err
	}

	s.logger.Info("department created", "id", dep.ID, "name", dep.Name)
	return dep, nil
}

// DeleteDepartment deletes a department and re-fetches
func (s *departmentService) DeleteDepartment(ctx context.Context, id int64) error {
	if err := requireAdmin(s.session, "manage departments"); err != nil {
		return err
	}

	return refreshAfter(ctx, s.logger, "delete department", func() error {
		if err := s.deptRepo.Delete(ctx, id); err != nil {
			s.logger.Error("failed to delete department", "id", id, "error", err)
			return err
		}
		s.logger.Info("department deleted", "id", id)
		return nil
	}, s.FetchDepartments)
}

// Reset restores the default catalogue
func (s *departmentService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.reset()
	s.list.succeed(append([]models.Department(nil), DefaultDepartments...))
}
