package project

// Version constants for the document schema and application.
const (
	// SchemaVersion is the current document schema version. Every document
	// written to disk carries this value in its "version" field.
	SchemaVersion = 2

	// AppName identifies the tool in created_with/saved_with fields.
	AppName = "ffx"

	// FileExtension is the conventional extension for project files.
	FileExtension = ".ffxproj"

	// DefaultActivityLogLimit bounds the activity log after every mutation.
	DefaultActivityLogLimit = 1000

	// DefaultAutoSaveIntervalSeconds is the autosave period (5 minutes).
	DefaultAutoSaveIntervalSeconds = 300
)
