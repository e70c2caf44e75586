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
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/sync/errgroup"

	"arkive/internal/config"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/domain/services"
)

// DefaultPageSize is the user table page size when none is configured
const DefaultPageSize = 10

type userService struct {
	mu          sync.Mutex
	userRepo    repositories.UserRepository
	departments services.DepartmentService
	session     services.Session
	logger      *slog.Logger

	list             listState[models.User]
	total            int
	page             int
	perPage          int
	defaultPerPage   int
	filter           models.UserFilter
	selected         map[int64]struct{}
	catalogueFetched bool
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	departments services.DepartmentService,
	session services.Session,
	perPage int,
	logger *slog.Logger,
) services.UserService {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return &userService{
		userRepo:       userRepo,
		departments:    departments,
		session:        session,
		logger:         logger,
		perPage:        perPage,
		defaultPerPage: perPage,
		selected:       make(map[int64]struct{}),
	}
}

// FetchUsers loads the current page. When the page is past the end (the
// last row of the last page was deleted) the last page is loaded instead.
func (s *userService) FetchUsers(ctx context.Context) error {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return err
	}

	s.mu.Lock()
	s.list.begin()
	query := models.UserQuery{PageIndex: s.page, CountPerPage: s.perPage, Filter: s.filter}
	s.mu.Unlock()

	page, err := s.userRepo.List(ctx, query)
	if err == nil && len(page.Users) == 0 && query.PageIndex > 0 && page.Total > 0 {
		query.PageIndex = (page.Total - 1) / query.CountPerPage
		page, err = s.userRepo.List(ctx, query)
	}
	if err != nil {
		s.logger.Error("failed to fetch users", "page", query.PageIndex, "error", err)
		s.mu.Lock()
		s.list.fail(domain.UserMessage(err, "Failed to load users"))
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.page = query.PageIndex
	s.total = page.Total
	s.list.succeed(page.Users)
	s.mu.Unlock()

	s.logger.Debug("users fetched", "page", query.PageIndex, "count", len(page.Users), "total", page.Total)
	return nil
}

// Users returns the current page snapshot
func (s *userService) Users() models.List[models.User] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.snapshot()
}

// TotalUsers is the backend's count of users matching the filter
func (s *userService) TotalUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Page returns the 0-based page index and page size
func (s *userService) Page() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.perPage
}

// SetPage selects a 0-based page
func (s *userService) SetPage(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = max(index, 0)
	s.list.invalidate()
}

// SetPageSize changes the page size and returns to the first page
func (s *userService) SetPageSize(perPage int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perPage <= 0 {
		perPage = s.defaultPerPage
	}
	s.perPage = perPage
	s.page = 0
	s.list.invalidate()
}

// SetFilter changes search and filters and returns to the first page
func (s *userService) SetFilter(filter models.UserFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = models.UserFilter{
		SearchKey:  strings.TrimSpace(filter.SearchKey),
		Role:       strings.TrimSpace(filter.Role),
		Status:     strings.TrimSpace(filter.Status),
		Department: strings.TrimSpace(filter.Department),
	}
	s.page = 0
	s.list.invalidate()
}

// GetUser retrieves one user
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// CreateUser validates and creates a user, then re-fetches.
// Role defaults to User and status to Active.
func (s *userService) CreateUser(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return nil, err
	}

	create, err := s.prepare(ctx, req, true)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = refreshAfter(ctx, s.logger, "create user", func() error {
		var err error
		user, err = s.userRepo.Create(ctx, create)
		if err != nil {
			s.logger.Error("failed to create user", "email", create.Email, "error", err)
			return err
		}
		return nil
	}, s.FetchUsers)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "id", user.ID, "role", user.Role)
	return user, nil
}

// UpdateUser validates and updates a user, then re-fetches. An empty
// password keeps the current one. Updating oneself also updates the session.
func (s *userService) UpdateUser(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error) {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return nil, err
	}

	update, err := s.prepare(ctx, req, false)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = refreshAfter(ctx, s.logger, "update user", func() error {
		var err error
		user, err = s.userRepo.Update(ctx, id, update)
		if err != nil {
			s.logger.Error("failed to update user", "id", id, "error", err)
			return err
		}
		return nil
	}, s.FetchUsers)
	if err != nil {
		return nil, err
	}

	if current, ok := s.session.Current(); ok && current.ID == id {
		if err := s.session.UpdateCurrentUser(ctx, *user); err != nil {
			s.logger.Warn("failed to update session user", "id", id, "error", err)
		}
	}

	s.logger.Info("user updated", "id", id)
	return user, nil
}

// prepare normalizes and validates a user form and resolves its
// department names to catalogue ids
func (s *userService) prepare(ctx context.Context, req *models.UserRequest, creating bool) (*models.UserRequest, error) {
	out := *req
	out.Name = strings.TrimSpace(out.Name)
	out.Email = strings.TrimSpace(out.Email)
	out.Phone = strings.TrimSpace(out.Phone)
	out.Position = strings.TrimSpace(out.Position)
	out.HireDate = strings.TrimSpace(out.HireDate)

	if role, ok := models.ParseRole(string(out.Role)); ok {
		out.Role = role
	} else if out.Role == "" && creating {
		out.Role = models.RoleUser
	}
	switch {
	case strings.EqualFold(out.Status, models.StatusActive):
		out.Status = models.StatusActive
	case strings.EqualFold(out.Status, models.StatusInactive):
		out.Status = models.StatusInactive
	case strings.TrimSpace(out.Status) == "" && creating:
		out.Status = models.StatusActive
	}

	if err := validateUserRequest(&out, creating); err != nil {
		return nil, err
	}

	names, ids, err := s.resolveDepartments(ctx, out.Departments)
	if err != nil {
		return nil, err
	}
	out.Departments = names
	out.DepartmentIDs = ids
	return &out, nil
}

func validateUserRequest(req *models.UserRequest, creating bool) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, config.MaxUserNameLength),
		),
		validation.Field(&req.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("email is not valid"),
			validation.RuneLength(1, config.MaxEmailLength),
		),
		validation.Field(&req.Password,
			validation.When(creating, validation.Required.Error("password is required")),
		),
		validation.Field(&req.Role,
			validation.In(models.RoleAdmin, models.RoleUser).Error("role must be Admin or User"),
		),
		validation.Field(&req.Status,
			validation.In(models.StatusActive, models.StatusInactive).Error("status must be Active or Inactive"),
		),
		validation.Field(&req.HireDate,
			validation.Date("2006-01-02").Error("hire date must be YYYY-MM-DD"),
		),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// resolveDepartments maps names onto the department catalogue, fetching it
// once per session
func (s *userService) resolveDepartments(ctx context.Context, names []string) ([]string, []int64, error) {
	names = normalizeNames(names)
	if len(names) == 0 {
		return nil, nil, nil
	}

	s.mu.Lock()
	fetch := !s.catalogueFetched
	s.catalogueFetched = true
	s.mu.Unlock()
	if fetch {
		if err := s.departments.FetchDepartments(ctx); err != nil {
			s.logger.Warn("using cached department catalogue", "error", err)
		}
	}

	resolved := make([]string, 0, len(names))
	ids := make([]int64, 0, len(names))
	var unknown []string
	for _, name := range names {
		dep, ok := s.departments.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		resolved = append(resolved, dep.Name)
		ids = append(ids, dep.ID)
	}
	if len(unknown) > 0 {
		return nil, nil, domain.NewValidationError("unknown department: %s", strings.Join(unknown, ", "))
	}
	return resolved, ids, nil
}

// DeleteUser deletes a user and re-fetches
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return err
	}
	if err := s.checkNotSelf(id); err != nil {
		return err
	}

	return refreshAfter(ctx, s.logger, "delete user", func() error {
		if err := s.userRepo.Delete(ctx, id); err != nil {
			s.logger.Error("failed to delete user", "id", id, "error", err)
			return err
		}
		s.forget([]int64{id})
		s.logger.Info("user deleted", "id", id)
		return nil
	}, s.FetchUsers)
}

func (s *userService) checkNotSelf(id int64) error {
	if current, ok := s.session.Current(); ok && current.ID == id {
		return domain.NewValidationError("you cannot delete your own account")
	}
	return nil
}

// forget drops deleted users from the page and the selection
func (s *userService) forget(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.selected, id)
	}
	s.list.items = slices.DeleteFunc(s.list.items, func(u models.User) bool {
		return slices.Contains(ids, u.ID)
	})
}

// DeleteSelectedUsers fires every delete concurrently and waits for all of
// them. There is no rollback: the result lists what was deleted and what
// failed, and the returned error joins every failure.
func (s *userService) DeleteSelectedUsers(ctx context.Context, ids []int64) (*models.BatchResult, error) {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return nil, err
	}

	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("select at least one user")
	}

	result := &models.BatchResult{Failed: make(map[int64]error)}
	var mu sync.Mutex
	var g errgroup.Group
	for _, id := range ids {
		if err := s.checkNotSelf(id); err != nil {
			result.Failed[id] = err
			continue
		}
		g.Go(func() error {
			err := s.userRepo.Delete(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err
				return err
			}
			result.Succeeded = append(result.Succeeded, id)
			return nil
		})
	}
	_ = g.Wait() // every outcome is in result

	slices.Sort(result.Succeeded)
	s.forget(result.Succeeded)
	if len(result.Succeeded) > 0 {
		if err := s.FetchUsers(ctx); err != nil {
			s.logger.Warn("refresh after batch delete failed", "error", err)
		}
	}

	s.logger.Info("batch delete finished", "deleted", len(result.Succeeded), "failed", len(result.Failed))
	return result, batchError("delete user", result)
}

// batchError joins the failures of result in key order
func batchError(op string, result *models.BatchResult) error {
	if result.OK() {
		return nil
	}
	keys := make([]int64, 0, len(result.Failed))
	for k := range result.Failed {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, fmt.Errorf("%s %d: %w", op, k, result.Failed[k]))
	}
	return errors.Join(errs...)
}

// Select adds id to the selection
func (s *userService) Select(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[id] = struct{}{}
}

// SelectAllOnPage selects every user on the current page
func (s *userService) SelectAllOnPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.list.items {
		s.selected[u.ID] = struct{}{}
	}
}

// ClearSelection empties the selection
func (s *userService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
}

// Selected returns the selected ids in ascending order
func (s *userService) Selected() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Reset clears all state
func (s *userService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.reset()
	s.total = 0
	s.page = 0
	s.perPage = s.defaultPerPage
	s.filter = models.UserFilter{}
	clear(s.selected)
	s.catalogueFetched = false
}
