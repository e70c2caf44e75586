package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"arkive/internal/domain/models"
)

// timestampLayouts are the forms the backends emit: Spring LocalDateTime has
// no zone, Flask uses a space separator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp decodes any of timestampLayouts, Jackson's array form
// [y, m, d, h, min, s, nanos] and null.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '[' {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		t.Time = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// nameList decodes either ["IT","HR"] or [{"id":1,"name":"IT"}].
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*n = nil
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*n = names
		return nil
	}

	var deps []models.Department
	if err := json.Unmarshal(data, &deps); err != nil {
		return err
	}
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		out = append(out, d.Name)
	}
	*n = out
	return nil
}

// mergeDepartments combines the list form with the legacy single-name field,
// dropping blanks and duplicates while keeping order.
func mergeDepartments(list []string, legacy string) []string {
	seen := make(map[string]struct{}, len(list)+1)
	out := make([]string, 0, len(list)+1)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, name := range list {
		add(name)
	}
	add(legacy)
	return out
}

type folderDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Departments nameList  `json:"departments"`
	Department  string    `json:"department"`
	CreatedAt   timestamp `json:"createdAt"`
	UpdatedAt   timestamp `json:"updatedAt"`
}

func (d *folderDTO) toModel() models.Folder {
	return models.Folder{
		ID:          d.ID,
		Title:       d.Title,
		Departments: mergeDepartments(d.Departments, d.Department),
		CreatedAt:   d.CreatedAt.Time,
		UpdatedAt:   d.UpdatedAt.Time,
	}
}

func folderBody(req *models.FolderRequest) map[string]any {
	body := map[string]any{
		"title":       strings.TrimSpace(req.Title),
		"departments": req.Departments,
	}
	// Older document services still read a single department
	if len(req.Departments) > 0 {
		body["department"] = req.Departments[0]
	}
	return body
}

type documentDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	OwnerName   string    `json:"ownerName"`
	Owner       string    `json:"owner"`
	OwnerID     int64     `json:"ownerId"`
	Department  string    `json:"department"`
	URL         string    `json:"url"`
	FolderID    *int64    `json:"folderId"`
	FolderIDAlt *int64    `json:"folder_id"`
	Category    string    `json:"category"`
	CreatedAt   timestamp `json:"createdAt"`
	UpdatedAt   timestamp `json:"updatedAt"`
}

func (d *documentDTO) toModel() models.Document {
	owner := d.OwnerName
	if owner == "" {
		owner = d.Owner
	}
	folderID := d.FolderID
	if folderID == nil {
		folderID = d.FolderIDAlt
	}
	return models.Document{
		ID:         d.ID,
		Title:      d.Title,
		Owner:      owner,
		OwnerID:    d.OwnerID,
		Department: d.Department,
		URL:        d.URL,
		FolderID:   folderID,
		Category:   d.Category,
		CreatedAt:  d.CreatedAt.Time,
		UpdatedAt:  d.UpdatedAt.Time,
	}
}

func documentsToModels(dtos []documentDTO) []models.Document {
	docs := make([]models.Document, 0, len(dtos))
	for i := range dtos {
		docs = append(docs, dtos[i].toModel())
	}
	return docs
}

type userDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Position    string   `json:"position"`
	Department  string   `json:"department"`
	Departments nameList `json:"departments"`
	Phone       string   `json:"phone"`
	Status      string   `json:"status"`
	HireDate    string   `json:"hire_date"`
}

// toModel maps the user; departments carry names only, ids come from the catalogue
func (d *userDTO) toModel() models.User {
	role, ok := models.ParseRole(d.Role)
	if !ok {
		role = models.RoleUser
	}

	var deps []models.Department
	for _, name := range mergeDepartments(d.Departments, d.Department) {
		deps = append(deps, models.Department{Name: name})
	}

	return models.User{
		ID:          d.ID,
		Name:        d.Name,
		Email:       d.Email,
		Role:        role,
		Departments: deps,
		Phone:       d.Phone,
		Position:    d.Position,
		Status:      normalizeStatus(d.Status),
		HireDate:    d.HireDate,
	}
}

func normalizeStatus(s string) string {
	switch {
	case strings.EqualFold(s, models.StatusActive):
		return models.StatusActive
	case strings.EqualFold(s, models.StatusInactive):
		return models.StatusInactive
	}
	return s
}

func userBody(req *models.UserRequest) map[string]any {
	body := map[string]any{
		"name":  strings.TrimSpace(req.Name),
		"email": strings.TrimSpace(req.Email),
	}
	if req.Password != "" {
		body["password"] = req.Password
	}
	if req.Role != "" {
		body["role"] = string(req.Role)
	}
	if req.Position != "" {
		body["position"] = req.Position
	}
	if req.Phone != "" {
		body["phone"] = req.Phone
	}
	if req.Status != "" {
		body["status"] = req.Status
	}
	if req.HireDate != "" {
		body["hire_date"] = req.HireDate
	}
	if len(req.DepartmentIDs) > 0 {
		body["department_id"] = req.DepartmentIDs[0]
		body["department_ids"] = req.DepartmentIDs
	}
	return body
}

// loginResponse accepts both token field names the auth services use
type loginResponse struct {
	Message      string  `json:"message"`
	Token        string  `json:"token"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         userDTO `json:"user"`
}

func (r *loginResponse) bearer() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}
