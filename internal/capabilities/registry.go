package capabilities

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// View identifiers defined in config/views.yaml
const (
	ViewFolders             = "folders"
	ViewDocuments           = "documents"
	ViewFolderDocuments     = "folder_documents"
	ViewDepartmentDocuments = "department_documents"
)

// Registry holds view capabilities and the extension to viewer table
type Registry struct {
	views   []ViewCapabilities
	viewers map[string]ViewerRule
	order   []string
	mu      sync.RWMutex
}

// NewRegistry creates a new capability registry and loads embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		viewers: make(map[string]ViewerRule),
	}

	if err := r.loadViews(); err != nil {
		return nil, fmt.Errorf("failed to load view capabilities: %w", err)
	}
	if err := r.loadViewers(); err != nil {
		return nil, fmt.Errorf("failed to load viewers: %w", err)
	}

	return r, nil
}

func readConfig(name string, out any) error {
	filename := fmt.Sprintf("config/%s.yaml", name)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

func (r *Registry) loadViews() error {
	var f viewsFile
	if err := readConfig("views", &f); err != nil {
		return err
	}

	r.mu.Lock()
	r.views = f.Views
	r.mu.Unlock()
	return nil
}

func (r *Registry) loadViewers() error {
	var f viewersFile
	if err := readConfig("viewers", &f); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range f.Viewers {
		ext := strings.ToLower(rule.Extension)
		r.viewers[ext] = rule
		r.order = append(r.order, ext)
	}
	return nil
}

// View returns the capabilities of one view
func (r *Registry) View(id string) (*ViewCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.views {
		if r.views[i].ID == id {
			view := r.views[i]
			return &view, nil
		}
	}
	return nil, fmt.Errorf("unknown view: %s", id)
}

// MustView is View for identifiers known at compile time
func (r *Registry) MustView(id string) *ViewCapabilities {
	view, err := r.View(id)
	if err != nil {
		panic(err)
	}
	return view
}

// ListViews returns all views (ordered as defined in YAML)
func (r *Registry) ListViews() []ViewCapabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ViewCapabilities(nil), r.views...)
}

// ViewerFor returns the viewer rule for a file extension (with or without
// the dot, any case). Unknown extensions get ViewerUnsupported.
func (r *Registry) ViewerFor(ext string) ViewerRule {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if rule, ok := r.viewers[ext]; ok {
		return rule
	}
	return ViewerRule{Extension: ext, Viewer: ViewerUnsupported}
}

// Extensions returns every previewable extension in YAML order
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
