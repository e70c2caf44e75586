package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"arkive/internal/capabilities"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *capabilities.Registry {
	t.Helper()
	r, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r
}

// fakeSession is a fixed logged-in user
type fakeSession struct {
	mu      sync.Mutex
	user    *models.User
	scope   []string
	updated *models.User
}

func newFakeSession(role models.Role, departments ...string) *fakeSession {
	user := &models.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: role}
	for i, d := range departments {
		user.Departments = append(user.Departments, models.Department{ID: int64(i + 1), Name: d})
	}
	return &fakeSession{user: user, scope: departments}
}

func (f *fakeSession) Current() (*models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, false
	}
	u := *f.user
	return &u, true
}

func (f *fakeSession) Scope() []string { return f.scope }

func (f *fakeSession) IsAdmin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user != nil && f.user.IsAdmin()
}

func (f *fakeSession) UpdateCurrentUser(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = &user
	return nil
}

// fakeFolderRepo is an in-memory folder backend that ignores the
// department query
type fakeFolderRepo struct {
	folders []models.Folder
	calls   int
	listErr error
	saveErr error
	nextID  int64
}

func (f *fakeFolderRepo) ListByDepartments(ctx context.Context, departments []string) ([]models.Folder, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.folders), nil
}

func (f *fakeFolderRepo) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	f.calls++
	for _, folder := range f.folders {
		if folder.ID == id {
			return &folder, nil
		}
	}
	return nil, &domain.APIError{Status: 404, Message: "Folder not found"}
}

func (f *fakeFolderRepo) Create(ctx context.Context, req *models.FolderRequest) (*models.Folder, error) {
	f.calls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	folder := models.Folder{ID: 100 + f.nextID, Title: req.Title, Departments: req.Departments}
	f.folders = append(f.folders, folder)
	return &folder, nil
}

func (f *fakeFolderRepo) Update(ctx context.Context, id int64, req *models.FolderRequest) (*models.Folder, error) {
	f.calls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	for i := range f.folders {
		if f.folders[i].ID == id {
			f.folders[i].Title = req.Title
			f.folders[i].Departments = req.Departments
			folder := f.folders[i]
			return &folder, nil
		}
	}
	return nil, &domain.APIError{Status: 404, Message: "Folder not found"}
}

func (f *fakeFolderRepo) Delete(ctx context.Context, id int64) error {
	f.calls++
	f.folders = slices.DeleteFunc(f.folders, func(folder models.Folder) bool { return folder.ID == id })
	return nil
}

// fakeDocumentRepo returns every document it holds, leaving filtering to the
// client, like a backend that ignores the query
type fakeDocumentRepo struct {
	docs     []models.Document
	calls    int
	listErr  error
	uploaded *models.UploadDocumentRequest
	updated  *models.Document
}

func (f *fakeDocumentRepo) ListUnfiled(ctx context.Context, departments []string) ([]models.Document, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.docs), nil
}

func (f *fakeDocumentRepo) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.docs), nil
}

func (f *fakeDocumentRepo) ListByDepartment(ctx context.Context, department string) ([]models.Document, error) {
	f.calls++
	return slices.Clone(f.docs), nil
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	f.calls++
	for _, d := range f.docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, &domain.APIError{Status: 404, Message: "Document not found"}
}

func (f *fakeDocumentRepo) Upload(ctx context.Context, req *models.UploadDocumentRequest) (*models.Document, error) {
	f.calls++
	f.uploaded = req
	doc := models.Document{
		ID:         int64(len(f.docs) + 1000),
		Title:      req.Title,
		Owner:      req.OwnerName,
		OwnerID:    req.OwnerID,
		Department: req.Department,
		FolderID:   req.FolderID,
		URL:        "http://gw/storage/download/" + req.FileName,
	}
	f.docs = append(f.docs, doc)
	return &doc, nil
}

func (f *fakeDocumentRepo) Update(ctx context.Context, doc *models.Document) (*models.Document, error) {
	f.calls++
	f.updated = doc
	for i := range f.docs {
		if f.docs[i].ID == doc.ID {
			f.docs[i] = *doc
		}
	}
	out := *doc
	return &out, nil
}

func (f *fakeDocumentRepo) Delete(ctx context.Context, id int64) error {
	f.calls++
	f.docs = slices.DeleteFunc(f.docs, func(d models.Document) bool { return d.ID == id })
	return nil
}

// fakeUserRepo is a concurrency-safe in-memory user backend
type fakeUserRepo struct {
	mu         sync.Mutex
	users      []models.User
	calls      int
	failDelete map[int64]bool
	failCreate map[string]bool // by email
	listErr    error
	created    []models.UserRequest
	lastQuery  models.UserQuery
	nextID     int64
}

func (f *fakeUserRepo) List(ctx context.Context, query models.UserQuery) (*models.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastQuery = query
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []models.User
	for _, u := range f.users {
		if query.Filter.SearchKey == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(query.Filter.SearchKey)) {
			matched = append(matched, u)
		}
	}
	start := min(query.PageIndex*query.CountPerPage, len(matched))
	end := min(start+query.CountPerPage, len(matched))
	return &models.UserPage{Users: slices.Clone(matched[start:end]), Total: len(matched)}, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, &domain.APIError{Status: 404, Message: "User not found"}
}

func (f *fakeUserRepo) Create(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failCreate[req.Email] {
		return nil, &domain.ConflictError{Message: "Email already exists", ResourceType: "user"}
	}
	f.created = append(f.created, *req)
	f.nextID++
	u := models.User{ID: 500 + f.nextID, Name: req.Name, Email: req.Email, Role: req.Role, Status: req.Status}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Name = req.Name
			f.users[i].Email = req.Email
			if req.Role != "" {
				f.users[i].Role = req.Role
			}
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, &domain.APIError{Status: 404, Message: "User not found"}
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failDelete[id] {
		return &domain.APIError{Status: 500, Message: "delete failed"}
	}
	f.users = slices.DeleteFunc(f.users, func(u models.User) bool { return u.ID == id })
	return nil
}

func (f *fakeUserRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeDepartmentRepo serves a fixed catalogue
type fakeDepartmentRepo struct {
	deps    []models.Department
	listErr error
	calls   int
}

func (f *fakeDepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.deps), nil
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, name string) (*models.Department, error) {
	f.calls++
	dep := models.Department{ID: int64(len(f.deps) + 10), Name: name}
	f.deps = append(f.deps, dep)
	return &dep, nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id int64) error {
	f.calls++
	f.deps = slices.DeleteFunc(f.deps, func(d models.Department) bool { return d.ID == id })
	return nil
}

// fakeStorage serves file content by name
type fakeStorage struct {
	files map[string]string
	err   error
}

func (f *fakeStorage) Download(ctx context.Context, fileName string, w io.Writer) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	content, ok := f.files[fileName]
	if !ok {
		return 0, &domain.APIError{Status: 404, Message: "File not found"}
	}
	n, err := io.WriteString(w, content)
	if err != nil {
		return int64(n), &domain.TransportError{Method: "GET", Path: fileName, Err: err}
	}
	return int64(n), nil
}

func (f *fakeStorage) URL(fileName string) string {
	return "http://gw/storage/download/" + fileName
}

// fakeTranslation echoes the title in upper case
type fakeTranslation struct {
	calls int
}

func (f *fakeTranslation) Translate(ctx context.Context, title, targetLanguage string) (*models.Translation, error) {
	f.calls++
	return &models.Translation{
		OriginalTitle:    title,
		TranslatedTitle:  strings.ToUpper(title),
		OriginalLanguage: "English",
		TargetLanguage:   targetLanguage,
	}, nil
}

func int64Ptr(v int64) *int64 { return &v }

func stringPtr(s string) *string { return &s }
