package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/httputil"
)

// RESTUserRepository implements the UserRepository interface
type RESTUserRepository struct {
	client *httputil.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &RESTUserRepository{client: config.API}
}

// List returns one page of users and the total matching count.
// The backend pages from 1; query.PageIndex is 0-based.
func (r *RESTUserRepository) List(ctx context.Context, query models.UserQuery) (*models.UserPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(query.PageIndex+1))
	if query.CountPerPage > 0 {
		q.Set("per_page", strconv.Itoa(query.CountPerPage))
	}
	setIfPresent(q, "search", query.Filter.SearchKey)
	setIfPresent(q, "role", query.Filter.Role)
	setIfPresent(q, "status", query.Filter.Status)
	setIfPresent(q, "department", query.Filter.Department)

	var dtos []userDTO
	env, err := r.client.Do(ctx, http.MethodGet, "users", q, nil, &dtos)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	page := &models.UserPage{
		Users: make([]models.User, 0, len(dtos)),
		Total: len(dtos),
	}
	if env.Total != nil {
		page.Total = *env.Total
	}
	for i := range dtos {
		page.Users = append(page.Users, dtos[i].toModel())
	}
	return page, nil
}

// GetByID retrieves a user by ID
func (r *RESTUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var dto userDTO
	if err := r.client.Get(ctx, idPath("users", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	user := dto.toModel()
	return &user, nil
}

// Create creates a new user
func (r *RESTUserRepository) Create(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	var dto userDTO
	if err := r.client.Post(ctx, "users", userBody(req), &dto); err != nil {
		return nil, wrapConflict(err, "create user", "user")
	}
	user := dto.toModel()
	return &user, nil
}

// Update updates a user
func (r *RESTUserRepository) Update(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error) {
	var dto userDTO
	if err := r.client.Put(ctx, idPath("users", id), userBody(req), &dto); err != nil {
		return nil, wrapConflict(err, fmt.Sprintf("update user %d", id), "user")
	}
	user := dto.toModel()
	return &user, nil
}

// Delete deletes a user
func (r *RESTUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, idPath("users", id)); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func setIfPresent(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}

// RESTDepartmentRepository implements the DepartmentRepository interface
type RESTDepartmentRepository struct {
	client *httputil.Client
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(config *RepositoryConfig) repositories.DepartmentRepository {
	return &RESTDepartmentRepository{client: config.API}
}

// List returns every department
func (r *RESTDepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	var deps []models.Department
	if err := r.client.Get(ctx, "departments", nil, &deps); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return deps, nil
}

// Create adds a department
func (r *RESTDepartmentRepository) Create(ctx context.Context, name string) (*models.Department, error) {
	var dep models.Department
	if err := r.client.Post(ctx, "departments", map[string]string{"name": name}, &dep); err != nil {
		return nil, wrapConflict(err, "create department", "department")
	}
	if dep.Name == "" {
		dep.Name = name
	}
	return &dep, nil
}

// Delete removes a department
func (r *RESTDepartmentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, idPath("departments", id)); err != nil {
		return fmt.Errorf("delete department %d: %w", id, err)
	}
	return nil
}
