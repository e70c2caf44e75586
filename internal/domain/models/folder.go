package models

import (
	"time"
)

// Folder is a named container scoped to one or more departments.
type Folder struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Departments []string  `json:"departments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VisibleTo reports whether the folder shares at least one department with scope.
func (f *Folder) VisibleTo(scope []string) bool {
	return Intersects(f.Departments, scope)
}

// Intersects reports whether a and b have at least one element in common.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	for _, s := range a {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// FolderRequest is the create/update form for a folder.
type FolderRequest struct {
	Title       string
	Departments []string
}
