package capabilities

import (
	"testing"
)

func TestNewRegistry_LoadsViews(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	tests := []struct {
		view             string
		folderNavigation bool
		multiDepartment  bool
		departmentFilter bool
		translation      bool
	}{
		{ViewFolders, true, true, false, false},
		{ViewDocuments, false, false, true, true},
		{ViewFolderDocuments, true, false, true, true},
		{ViewDepartmentDocuments, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			v, err := r.View(tt.view)
			if err != nil {
				t.Fatalf("View(%s) failed: %v", tt.view, err)
			}
			if v.FolderNavigation != tt.folderNavigation {
				t.Errorf("FolderNavigation = %v, want %v", v.FolderNavigation, tt.folderNavigation)
			}
			if v.MultiDepartment != tt.multiDepartment {
				t.Errorf("MultiDepartment = %v, want %v", v.MultiDepartment, tt.multiDepartment)
			}
			if v.DepartmentFilter != tt.departmentFilter {
				t.Errorf("DepartmentFilter = %v, want %v", v.DepartmentFilter, tt.departmentFilter)
			}
			if v.Translation != tt.translation {
				t.Errorf("Translation = %v, want %v", v.Translation, tt.translation)
			}
		})
	}

	if views := r.ListViews(); len(views) != 4 || views[0].ID != ViewFolders {
		t.Errorf("ListViews order = %v", views)
	}
	if _, err := r.View("nope"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestRegistry_ViewerFor(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	tests := []struct {
		ext    string
		viewer Viewer
		inline bool
	}{
		{"txt", ViewerText, true},
		{".JSON", ViewerJSON, true},
		{"csv", ViewerTable, true},
		{"png", ViewerImage, false},
		{"pdf", ViewerPDF, false},
		{"docx", ViewerOffice, false},
		{"exe", ViewerUnsupported, false},
		{"", ViewerUnsupported, false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			rule := r.ViewerFor(tt.ext)
			if rule.Viewer != tt.viewer {
				t.Errorf("Viewer = %s, want %s", rule.Viewer, tt.viewer)
			}
			if rule.Inline != tt.inline {
				t.Errorf("Inline = %v, want %v", rule.Inline, tt.inline)
			}
		})
	}

	if exts := r.Extensions(); len(exts) == 0 || exts[0] != "txt" {
		t.Errorf("Extensions = %v, want txt first", exts)
	}
}
