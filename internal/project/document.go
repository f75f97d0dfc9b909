package project

// Document is the root persisted entity: one working session's complete
// state, serialized as a single versioned JSON artifact.
//
// Treat Document values as immutable. All transforms (session.go,
// activity.go, integrity.go, mutate.go) return a NEW Document value and
// leave the receiver untouched (CP-1).
type Document struct {
	Version int `json:"version"`

	ID       string `json:"id"`
	Name     string `json:"name"`
	RootPath string `json:"root_path"`

	CreatedAt string `json:"created_at"`
	SavedAt   string `json:"saved_at,omitempty"`

	CreatedBy     string `json:"created_by"`
	CreatedWith   string `json:"created_with"`
	LastSavedBy   string `json:"last_saved_by,omitempty"`
	LastSavedWith string `json:"last_saved_with,omitempty"`

	Users            []string  `json:"users"`
	Sessions         []Session `json:"sessions"`
	CurrentSessionID string    `json:"current_session_id,omitempty"`

	ActivityLog      []ActivityEntry `json:"activity_log"`
	ActivityLogLimit int             `json:"activity_log_limit"`

	OpenDirectories   []string               `json:"open_directories"`
	RecentDirectories []string               `json:"recent_directories"`
	Tabs              []EvidenceTab          `json:"tabs"`
	ActiveTabPath     string                 `json:"active_tab_path,omitempty"`
	SelectedFile      string                 `json:"selected_file,omitempty"`
	HashHistory       map[string][]HashRecord `json:"hash_history"`

	ProcessedDatabases ProcessedDBState `json:"processed_databases"`

	Bookmarks []Bookmark `json:"bookmarks"`
	Notes     []Note     `json:"notes"`
	Tags      []Tag      `json:"tags"`
	Reports   []Report   `json:"reports"`

	SavedSearches  []SavedSearch `json:"saved_searches"`
	RecentSearches []string      `json:"recent_searches"`
	FilterState    FilterState   `json:"filter_state"`

	UIState  UIState  `json:"ui_state"`
	Settings Settings `json:"settings"`

	// Checksum is stamped on save from the canonical JSON of the business
	// fields (CP-4). Empty on unsaved documents.
	Checksum string `json:"checksum,omitempty"`
}

// Session is a bounded work interval for one user against one loaded
// document. EndedAt is empty while the session is open.
type Session struct {
	ID              string `json:"id"`
	User            string `json:"user"`
	StartedAt       string `json:"started_at"`
	EndedAt         string `json:"ended_at,omitempty"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	Hostname        string `json:"hostname,omitempty"`
	AppVersion      string `json:"app_version,omitempty"`
}

// Open reports whether the session has not been ended yet.
func (s Session) Open() bool {
	return s.EndedAt == ""
}

// ActivityEntry is one audit record of a user-visible action.
type ActivityEntry struct {
	ID          string            `json:"id"`
	Timestamp   string            `json:"timestamp"`
	User        string            `json:"user"`
	Category    string            `json:"category"`
	Action      string            `json:"action"`
	Description string            `json:"description"`
	FilePath    string            `json:"file_path,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// EvidenceTab identifies one open evidence view in tab order.
type EvidenceTab struct {
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	ViewMode string `json:"view_mode,omitempty"`
}

// HashRecord is one entry in a file's append-only hash history (CP-3).
type HashRecord struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
	Verified  bool   `json:"verified"`
	Reference string `json:"reference,omitempty"`
}

// ProcessedDBState holds the processed-database list, current selection and
// the per-path integrity records.
type ProcessedDBState struct {
	Databases []string                   `json:"databases"`
	Selected  string                     `json:"selected,omitempty"`
	Integrity map[string]IntegrityRecord `json:"integrity"`
}

// Bookmark marks one file of interest.
type Bookmark struct {
	ID        string            `json:"id"`
	FilePath  string            `json:"file_path"`
	Label     string            `json:"label,omitempty"`
	Author    string            `json:"author"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Note is a free-form annotation attached to a file or to the project
// itself (empty FilePath).
type Note struct {
	ID        string            `json:"id"`
	FilePath  string            `json:"file_path,omitempty"`
	Text      string            `json:"text"`
	Author    string            `json:"author"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Tag is a named label applied to a file.
type Tag struct {
	ID        string `json:"id"`
	FilePath  string `json:"file_path"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// Report records a generated report artifact.
type Report struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	CreatedAt string `json:"created_at"`
}

// SavedSearch is a named, reusable search definition.
type SavedSearch struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Query     string `json:"query"`
	CreatedAt string `json:"created_at"`
}

// FilterState is the active evidence-list filter.
type FilterState struct {
	Extensions      []string `json:"extensions"`
	SearchTerm      string   `json:"search_term,omitempty"`
	MinSize         int64    `json:"min_size,omitempty"`
	MaxSize         int64    `json:"max_size,omitempty"`
	ModifiedAfter   string   `json:"modified_after,omitempty"`
	ModifiedBefore  string   `json:"modified_before,omitempty"`
	ShowOnlyFlagged bool     `json:"show_only_flagged"`
}

// UIState is arbitrary UI geometry persisted across sessions. The manager
// stores whatever the UI layer hands it; nothing here is interpreted.
type UIState struct {
	PanelWidths     map[string]int `json:"panel_widths"`
	CollapsedPanels []string       `json:"collapsed_panels"`
	ActiveView      string         `json:"active_view,omitempty"`
	ViewMode        string         `json:"view_mode,omitempty"`
	ShowHiddenFiles bool           `json:"show_hidden_files"`
}

// Settings are user preferences carried inside the document.
type Settings struct {
	AutoSave                bool   `json:"auto_save"`
	AutoSaveIntervalSeconds int    `json:"auto_save_interval_seconds"`
	TrackActivity           bool   `json:"track_activity"`
	HashAlgorithm           string `json:"hash_algorithm"`
	Theme                   string `json:"theme,omitempty"`
}
