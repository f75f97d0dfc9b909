package storage

import "github.com/ffxlabs/ffxproj/internal/project"

// Service is the external collaborator boundary: durable document I/O plus
// runtime identity. Implementations must be safe to call from the autosave
// goroutine as well as the UI thread.
type Service interface {
	// CheckExists resolves the conventional project path for a root
	// directory and reports whether a project file already exists there.
	CheckExists(rootPath string) (path string, found bool, err error)

	// DefaultPath returns the deterministic project path for a root
	// directory, whether or not anything exists there yet.
	DefaultPath(rootPath string) string

	// Save persists the document to path, returning the bytes written.
	Save(doc project.Document, path string) (bytesWritten int64, err error)

	// Load reads, validates, and parses the document at path.
	Load(path string) (project.Document, error)

	// Username returns the current runtime user.
	Username() string

	// AppVersion returns the running tool version.
	AppVersion() string
}

// Prompter supplies interactive path prompts, used whenever no explicit
// path is available. ok=false means the user dismissed the prompt.
type Prompter interface {
	OpenPath() (path string, ok bool, err error)
	SavePath(defaultPath string) (path string, ok bool, err error)
}

// SaveResult is the discriminated outcome of a save. Exactly one of
// Success, Cancelled, or Err describes what happened.
type SaveResult struct {
	Success      bool   `json:"success"`
	Path         string `json:"path,omitempty"`
	BytesWritten int64  `json:"bytes_written,omitempty"`
	Cancelled    bool   `json:"cancelled,omitempty"`
	Err          error  `json:"-"`
}

// LoadResult is the discriminated outcome of a load. Warnings carry
// non-fatal findings (older schema version, checksum drift) alongside a
// successfully loaded document.
type LoadResult struct {
	Project   *project.Document `json:"project,omitempty"`
	Path      string            `json:"path,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Cancelled bool              `json:"cancelled,omitempty"`
	Err       error             `json:"-"`
}
