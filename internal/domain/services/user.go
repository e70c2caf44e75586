package services

import (
	"context"
	"io"

	"arkive/internal/domain/models"
)

// UserService is the admin-only user table
type UserService interface {
	// FetchUsers loads the current page
	FetchUsers(ctx context.Context) error

	// Users returns the current page snapshot
	Users() models.List[models.User]

	// TotalUsers is the backend's count of users matching the filter
	TotalUsers() int

	// Page returns the 0-based page index and page size
	Page() (index, perPage int)

	// SetPage selects a 0-based page
	SetPage(index int)

	// SetPageSize changes the page size and returns to the first page
	SetPageSize(perPage int)

	// SetFilter changes search and filters and returns to the first page
	SetFilter(filter models.UserFilter)

	// GetUser retrieves one user
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// CreateUser creates a user and re-fetches
	CreateUser(ctx context.Context, req *models.UserRequest) (*models.User, error)

	// UpdateUser updates a user and re-fetches
	UpdateUser(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error)

	// DeleteUser deletes a user and re-fetches
	DeleteUser(ctx context.Context, id int64) error

	// DeleteSelectedUsers deletes ids concurrently and reports each outcome
	DeleteSelectedUsers(ctx context.Context, ids []int64) (*models.BatchResult, error)

	// ImportUsers creates users from CSV rows concurrently
	ImportUsers(ctx context.Context, r io.Reader) (*models.BatchResult, error)

	// Select adds id to the selection
	Select(id int64)

	// SelectAllOnPage selects every user on the current page
	SelectAllOnPage()

	// ClearSelection empties the selection
	ClearSelection()

	// Selected returns the selected ids in ascending order
	Selected() []int64

	// Reset clears all state
	Reset()
}

// DepartmentService is the department catalogue
type DepartmentService interface {
	// FetchDepartments loads the catalogue; on failure the built-in
	// default catalogue stays in place
	FetchDepartments(ctx context.Context) error

	// Departments returns the catalogue snapshot
	Departments() models.List[models.Department]

	// Lookup finds a department by name, case-insensitively
	Lookup(name string) (models.Department, bool)

	// AddDepartment creates a department and re-fetches
	AddDepartment(ctx context.Context, name string) (*models.Department, error)

	// DeleteDepartment deletes a department and re-fetches
	DeleteDepartment(ctx context.Context, id int64) error

	// Reset restores the default catalogue
	Reset()
}
