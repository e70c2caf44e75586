package capabilities

import "gopkg.in/yaml.v3"

// Viewer is how a document's content is presented
type Viewer string

const (
	ViewerText        Viewer = "text"
	ViewerJSON        Viewer = "json"
	ViewerTable       Viewer = "table"
	ViewerImage       Viewer = "image"
	ViewerPDF         Viewer = "pdf"
	ViewerOffice      Viewer = "office"
	ViewerUnsupported Viewer = "unsupported"
)

// ViewCapabilities are the behaviour flags of one list view
type ViewCapabilities struct {
	// View identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`

	// FolderNavigation allows opening folders and going back
	FolderNavigation bool `yaml:"folder_navigation" json:"folder_navigation"`

	// MultiDepartment allows assigning more than one department
	MultiDepartment bool `yaml:"multi_department" json:"multi_department"`

	// DepartmentFilter allows filtering the list by department
	DepartmentFilter bool `yaml:"department_filter" json:"department_filter"`

	// Translation allows translating document titles
	Translation bool `yaml:"translation" json:"translation"`
}

// ViewerRule maps one file extension to a viewer
type ViewerRule struct {
	// Extension without the dot (set during YAML unmarshaling)
	Extension string `yaml:"-" json:"extension"`

	Viewer Viewer `yaml:"viewer" json:"viewer"`

	// Inline viewers need the file content; others only need a link
	Inline bool `yaml:"inline" json:"inline"`
}

// viewsFile is the layout of config/views.yaml
type viewsFile struct {
	Views []ViewCapabilities `yaml:"-"`
}

// viewersFile is the layout of config/viewers.yaml
type viewersFile struct {
	Viewers []ViewerRule `yaml:"-"`
}

// UnmarshalYAML preserves view order from the YAML file
func (f *viewsFile) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Views map[string]ViewCapabilities `yaml:"views"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}

	for _, key := range orderedKeys(node, "views") {
		if view, ok := m.Views[key]; ok {
			view.ID = key
			f.Views = append(f.Views, view)
		}
	}
	return nil
}

// UnmarshalYAML preserves extension order from the YAML file
func (f *viewersFile) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Viewers map[string]ViewerRule `yaml:"viewers"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}

	for _, key := range orderedKeys(node, "viewers") {
		if rule, ok := m.Viewers[key]; ok {
			rule.Extension = key
			f.Viewers = append(f.Viewers, rule)
		}
	}
	return nil
}

// orderedKeys returns the keys of the mapping under field in document order
func orderedKeys(node *yaml.Node, field string) []string {
	// node.Content alternates: key, value, key, value...
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != field {
			continue
		}
		mapping := node.Content[i+1]
		keys := make([]string, 0, len(mapping.Content)/2)
		for j := 0; j+1 < len(mapping.Content); j += 2 {
			keys = append(keys, mapping.Content[j].Value)
		}
		return keys
	}
	return nil
}
