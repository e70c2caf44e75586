package models

import (
	"io"
	"path"
	"strings"
	"time"
)

// Document belongs to exactly one department and optionally one folder.
type Document struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Owner      string    `json:"owner"` // display name
	OwnerID    int64     `json:"ownerId,omitempty"`
	Department string    `json:"department"`
	URL        string    `json:"url"`
	FolderID   *int64    `json:"folder_id,omitempty"` // nil = unfiled
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Filed reports whether the document belongs to a folder.
func (d *Document) Filed() bool {
	return d.FolderID != nil
}

// InFolder reports whether the document belongs to folder id.
func (d *Document) InFolder(id int64) bool {
	return d.FolderID != nil && *d.FolderID == id
}

// FileName returns the last path element of the document URL.
func (d *Document) FileName() string {
	u := d.URL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return path.Base(u)
}

// Extension returns the lower-cased file extension without the dot.
func (d *Document) Extension() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(d.FileName())), ".")
}

// DocumentFilter is the ephemeral per-view search and attribute filter.
type DocumentFilter struct {
	SearchKey  string
	Department string
}

// Matches applies the case-insensitive title/owner search and the department equality filter.
func (f DocumentFilter) Matches(d *Document) bool {
	if f.Department != "" && d.Department != f.Department {
		return false
	}
	key := strings.ToLower(strings.TrimSpace(f.SearchKey))
	if key == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Title), key) ||
		strings.Contains(strings.ToLower(d.Owner), key)
}

// UserFilter is the user table search and attribute filter.
type UserFilter struct {
	SearchKey  string
	Role       string
	Status     string
	Department string
}

// TitleFromFileName strips the extension from a file name.
func TitleFromFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// OptionalFolderID tracks tri-state semantics for a document's folder on update.
// This is transport-agnostic (no JSON tags) - the REST repository maps it onto the wire.
//   - Present=false: keep the current folder
//   - Present=true, Value=nil: unfile the document
//   - Present=true, Value=&id: move the document into folder id
type OptionalFolderID struct {
	Present bool
	Value   *int64
}

// MoveToFolder returns an OptionalFolderID that moves the document into id.
func MoveToFolder(id int64) OptionalFolderID {
	return OptionalFolderID{Present: true, Value: &id}
}

// Unfile returns an OptionalFolderID that detaches the document from its folder.
func Unfile() OptionalFolderID {
	return OptionalFolderID{Present: true}
}

// UploadDocumentRequest is a new document plus its file content.
type UploadDocumentRequest struct {
	FileName   string
	File       io.Reader
	Title      string // defaults to FileName without extension
	Department string
	OwnerID    int64
	OwnerName  string
	FolderID   *int64
	Category   string
}

// UpdateDocumentRequest is a partial document update.
// Nil pointers leave the field unchanged.
type UpdateDocumentRequest struct {
	Title      *string
	Department *string
	Category   *string
	FolderID   OptionalFolderID
}

// Apply returns a copy of d with the request's present fields applied.
func (r *UpdateDocumentRequest) Apply(d Document) Document {
	if r.Title != nil {
		d.Title = *r.Title
	}
	if r.Department != nil {
		d.Department = *r.Department
	}
	if r.Category != nil {
		d.Category = *r.Category
	}
	if r.FolderID.Present {
		d.FolderID = r.FolderID.Value
	}
	return d
}
