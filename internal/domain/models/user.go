package models

import (
	"strings"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleUser}

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// User status values
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Department is a flat, globally defined reference entity.
type Department struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// User is an Arkive account.
// Departments is ordered; the first entry is the "primary" department.
type User struct {
	ID          int64        `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Email       string       `json:"email" yaml:"email"`
	Password    string       `json:"password,omitempty" yaml:"-"` // write-only
	Role        Role         `json:"role" yaml:"role"`
	Departments []Department `json:"departments" yaml:"departments"`
	Phone       string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	Position    string       `json:"position,omitempty" yaml:"position,omitempty"`
	Status      string       `json:"status,omitempty" yaml:"status,omitempty"`
	HireDate    string       `json:"hire_date,omitempty" yaml:"hire_date,omitempty"` // YYYY-MM-DD
}

// IsAdmin reports whether the user has the Admin role.
func (u *User) IsAdmin() bool {
	return strings.EqualFold(string(u.Role), string(RoleAdmin))
}

// DepartmentNames returns the user's department names in order.
func (u *User) DepartmentNames() []string {
	names := make([]string, 0, len(u.Departments))
	for _, d := range u.Departments {
		if d.Name != "" {
			names = append(names, d.Name)
		}
	}
	return names
}

// PrimaryDepartment returns the first department name, or "" when there is none.
func (u *User) PrimaryDepartment() string {
	if len(u.Departments) == 0 {
		return ""
	}
	return u.Departments[0].Name
}

// Sanitized returns a copy without the password.
func (u User) Sanitized() User {
	u.Password = ""
	u.Departments = append([]Department(nil), u.Departments...)
	return u
}

// UserPage is one page of the user table.
type UserPage struct {
	Users []User
	Total int
}

// UserRequest is the create/update form for a user.
// Departments are names; DepartmentIDs are filled from the department
// catalogue before the request is sent. An empty Password on update keeps
// the current one.
type UserRequest struct {
	Name          string
	Email         string
	Password      string
	Role          Role
	Departments   []string
	DepartmentIDs []int64
	Phone         string
	Position      string
	Status        string
	HireDate      string
}

// UserQuery is one page request for the user table.
// PageIndex is 0-based.
type UserQuery struct {
	PageIndex    int
	CountPerPage int
	Filter       UserFilter
}

// BatchResult reports a fan-out operation item by item.
// Deletes key Failed by user id; imports key it by CSV line number and
// list created user ids in Succeeded. A deleted id is never also in Failed.
type BatchResult struct {
	Succeeded []int64
	Failed    map[int64]error
}

// OK reports whether every item succeeded.
func (r *BatchResult) OK() bool {
	return len(r.Failed) == 0
}
