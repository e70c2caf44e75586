package config

const (
	// MaxFolderTitleLength is the maximum length for folder titles.
	MaxFolderTitleLength = 255

	// MaxDocumentTitleLength is the maximum length for document titles.
	// Same as folder titles for consistency.
	MaxDocumentTitleLength = 255

	// MaxDepartmentNameLength matches the backend's department name column.
	MaxDepartmentNameLength = 100

	// MaxUserNameLength matches the users table (VARCHAR(80)).
	MaxUserNameLength = 80

	// MaxEmailLength matches the users table (VARCHAR(120)).
	MaxEmailLength = 120

	// MaxUploadSize caps a single document upload at 50MB.
	MaxUploadSize = 50 << 20

	// MaxPreviewSize caps how much of a file is read for an inline preview.
	MaxPreviewSize = 5 << 20
)
