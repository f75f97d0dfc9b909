package project

import (
	"path/filepath"
	"time"
)

// NewDocument creates an empty project document for a freshly opened root
// directory, with one open session for the creating user and a single
// "create" activity entry.
//
// The result is unsaved: it has no checksum and no saved_at timestamp. The
// caller owns path resolution and persistence.
func NewDocument(rootPath, user, appVersion, hostname string, now time.Time, ids IDGenerator) Document {
	created := NowISO(now)

	doc := Document{
		Version:  SchemaVersion,
		ID:       ids.NewID(),
		Name:     filepath.Base(rootPath),
		RootPath: rootPath,

		CreatedAt:   created,
		CreatedBy:   user,
		CreatedWith: appVersion,

		Users: []string{user},

		ActivityLog:      []ActivityEntry{},
		ActivityLogLimit: DefaultActivityLogLimit,

		OpenDirectories:   []string{rootPath},
		RecentDirectories: []string{rootPath},
		Tabs:              []EvidenceTab{},
		HashHistory:       map[string][]HashRecord{},

		ProcessedDatabases: ProcessedDBState{
			Databases: []string{},
			Integrity: map[string]IntegrityRecord{},
		},

		Bookmarks: []Bookmark{},
		Notes:     []Note{},
		Tags:      []Tag{},
		Reports:   []Report{},

		SavedSearches:  []SavedSearch{},
		RecentSearches: []string{},
		FilterState:    DefaultFilterState(),

		UIState:  DefaultUIState(),
		Settings: DefaultSettings(),
	}

	doc, _ = doc.StartSession(user, hostname, appVersion, now, ids)
	doc = doc.WithActivity(ActivityEntry{
		ID:          ids.NewID(),
		Timestamp:   created,
		User:        user,
		Category:    CategoryProject,
		Action:      "create",
		Description: "Created project for " + rootPath,
		FilePath:    rootPath,
	})

	return doc
}

// DefaultUIState supplies the deterministic initial UI layout.
func DefaultUIState() UIState {
	return UIState{
		PanelWidths: map[string]int{
			"tree":    280,
			"detail":  400,
			"preview": 520,
		},
		CollapsedPanels: []string{},
		ActiveView:      "evidence",
		ViewMode:        "list",
		ShowHiddenFiles: false,
	}
}

// DefaultFilterState supplies the deterministic initial filter (match all).
func DefaultFilterState() FilterState {
	return FilterState{
		Extensions:      []string{},
		ShowOnlyFlagged: false,
	}
}

// DefaultSettings supplies the deterministic initial settings.
func DefaultSettings() Settings {
	return Settings{
		AutoSave:                true,
		AutoSaveIntervalSeconds: DefaultAutoSaveIntervalSeconds,
		TrackActivity:           true,
		HashAlgorithm:           "sha256",
	}
}
