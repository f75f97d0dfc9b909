package state

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ffxlabs/ffxproj/internal/project"
	"github.com/ffxlabs/ffxproj/internal/storage"
)

// Manager is the single facade over the loaded document. It owns the
// current document value, the known project path, the dirty flag, the
// session lifecycle and the autosave scheduler, and it delegates all I/O
// to the storage gateway.
//
// Mutators follow one shape: acquire the lock, no-op if no document is
// loaded, derive a new document value via a project transform, append the
// matching activity entry, replace the stored document, set dirty. The lock
// is NOT held across disk I/O: Save snapshots the document, releases the
// lock for the write, and reacquires it to commit the outcome.
type Manager struct {
	gateway  *storage.Gateway
	sched    *Scheduler
	clock    Clock
	ids      project.IDGenerator
	hostname string
	logger   *log.Logger

	// autosaveEnabled is the host-level master switch; the per-document
	// settings.auto_save toggle is honored on top of it.
	autosaveEnabled bool

	mu      sync.Mutex
	doc     *project.Document
	path    string
	dirty   bool
	saving  bool
	loading bool
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithClock overrides the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithIDGenerator overrides the ID generator, for tests.
func WithIDGenerator(ids project.IDGenerator) Option {
	return func(m *Manager) { m.ids = ids }
}

// WithHostname overrides the recorded hostname.
func WithHostname(h string) Option {
	return func(m *Manager) { m.hostname = h }
}

// WithLogger sets the diagnostic logger. Defaults to silent.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithAutosaveDisabled turns the autosave scheduler off regardless of
// document settings. Useful for batch tooling and tests.
func WithAutosaveDisabled() Option {
	return func(m *Manager) { m.autosaveEnabled = false }
}

// NewManager creates a manager with no document loaded.
func NewManager(gateway *storage.Gateway, opts ...Option) *Manager {
	hostname, _ := os.Hostname()
	m := &Manager{
		gateway:         gateway,
		clock:           SystemClock{},
		ids:             project.TimeOrderedGenerator{},
		hostname:        hostname,
		logger:          log.New(io.Discard, "", 0),
		autosaveEnabled: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sched = NewScheduler(m.autosaveEligible, m.logger)
	return m
}

// SetAutoSaveFunc registers the routine the autosave scheduler invokes on
// each eligible tick. The scheduler never saves on its own: without a
// registered routine, ticks are skipped.
func (m *Manager) SetAutoSaveFunc(fn SaveFunc) {
	m.sched.SetSaveFunc(fn)
}

// AutoSaveRunning reports whether the autosave timer is active.
func (m *Manager) AutoSaveRunning() bool {
	return m.sched.Running()
}

// Document returns a copy of the loaded document, or ok=false when none is
// loaded. The copy shares no mutable state with the manager: document
// values are immutable by convention.
func (m *Manager) Document() (project.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return project.Document{}, false
	}
	return *m.doc, true
}

// Path returns the known on-disk project path, empty if never saved.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Dirty reports whether unsaved changes exist.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// CreateProject initializes a fresh document for rootPath with an open
// session for the runtime user and marks it dirty. Fails if a document is
// already loaded; clear or save it first.
func (m *Manager) CreateProject(rootPath string) (project.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc != nil {
		return project.Document{}, newStateError(ErrCodeProjectLoaded,
			fmt.Sprintf("a project is already loaded (%s)", m.doc.RootPath))
	}

	svc := m.gateway.Service()
	doc := project.NewDocument(rootPath, svc.Username(), svc.AppVersion(), m.hostname, m.clock.Now(), m.ids)

	m.doc = &doc
	m.path = ""
	m.dirty = true
	m.startAutoSaveLocked()
	return doc, nil
}

// ClearProject unloads the current document, ending its open session and
// stopping the autosave timer. Refused when unsaved changes exist unless
// force is set. Clearing with no document loaded is a no-op.
func (m *Manager) ClearProject(force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc == nil {
		return nil
	}
	if m.dirty && !force {
		return newStateError(ErrCodeUnsavedChanges, "unsaved changes; save first or force the clear")
	}

	m.sched.Stop()
	m.doc = nil
	m.path = ""
	m.dirty = false
	return nil
}

// StartNewSession opens a session for the runtime user. Fails if a session
// is already open: open and close must be strictly paired.
func (m *Manager) StartNewSession() (project.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc == nil {
		return project.Session{}, newStateError(ErrCodeNoProject, "no project loaded")
	}
	if open := m.doc.OpenSession(); open != nil {
		return project.Session{}, newStateError(ErrCodeSessionOpen,
			fmt.Sprintf("session %s is still open; end it first", open.ID))
	}

	svc := m.gateway.Service()
	doc, session := m.doc.StartSession(svc.Username(), m.hostname, svc.AppVersion(), m.clock.Now(), m.ids)
	m.doc = &doc
	m.dirty = true
	return session, nil
}

// EndCurrentSession closes the open session, stamping its end time and a
// non-negative duration. No-op if nothing is open.
func (m *Manager) EndCurrentSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc == nil || m.doc.OpenSession() == nil {
		return
	}
	doc := m.doc.EndCurrentSession(m.clock.Now())
	m.doc = &doc
	m.dirty = true
}

// LogActivity appends one audit entry. Silently dropped when no document is
// loaded or the document's tracking toggle is off. Unknown categories are
// recorded under the system category rather than rejected: an audit trail
// that loses entries to a typo is worse than one with a miscategorized
// entry.
func (m *Manager) LogActivity(category, action, description, filePath string, details map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logActivityLocked(category, action, description, filePath, details)
}

func (m *Manager) logActivityLocked(category, action, description, filePath string, details map[string]string) {
	if m.doc == nil || !m.doc.Settings.TrackActivity {
		return
	}
	if !project.ValidCategories[category] {
		category = project.CategorySystem
	}

	doc := m.doc.WithActivity(project.ActivityEntry{
		ID:          m.ids.NewID(),
		Timestamp:   project.NowISO(m.clock.Now()),
		User:        m.gateway.Service().Username(),
		Category:    category,
		Action:      action,
		Description: description,
		FilePath:    filePath,
		Details:     details,
	})
	m.doc = &doc
	m.dirty = true
}

// UpdateUIState replaces the persisted UI geometry and logs one system
// activity entry.
func (m *Manager) UpdateUIState(ui project.UIState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return
	}
	doc := m.doc.WithUIState(ui)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategorySystem, "update", "Updated interface state", "", nil)
}

// UpdateFilterState replaces the active evidence filter.
func (m *Manager) UpdateFilterState(fs project.FilterState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return
	}
	doc := m.doc.WithFilterState(fs)
	m.doc = &doc
	m.dirty = true
}

// UpdateSettings replaces the document settings and restarts the autosave
// timer to honor the new auto_save toggle and interval.
func (m *Manager) UpdateSettings(s project.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return
	}
	doc := m.doc.WithSettings(s)
	m.doc = &doc
	m.dirty = true
	m.startAutoSaveLocked()
}

// AddBookmark stores a bookmark, filling in ID, author and creation time
// when absent, and logs one bookmark activity entry. Returns the stored
// value. ok=false when no document is loaded.
func (m *Manager) AddBookmark(b project.Bookmark) (project.Bookmark, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return project.Bookmark{}, false
	}

	if b.ID == "" {
		b.ID = m.ids.NewID()
	}
	if b.Author == "" {
		b.Author = m.gateway.Service().Username()
	}
	if b.CreatedAt == "" {
		b.CreatedAt = project.NowISO(m.clock.Now())
	}

	doc := m.doc.WithBookmark(b)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryBookmark, "add", "Bookmarked "+b.FilePath, b.FilePath, nil)
	return b, true
}

// RemoveBookmark deletes the bookmark with the given ID and logs one
// bookmark activity entry. Unknown IDs return false without logging.
func (m *Manager) RemoveBookmark(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return false
	}

	removed := m.doc.FindBookmark(id)
	doc, ok := m.doc.WithoutBookmark(id)
	if !ok {
		return false
	}
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryBookmark, "remove", "Removed bookmark for "+removed.FilePath, removed.FilePath, nil)
	return true
}

// AddNote stores a note, filling in ID, author and creation time when
// absent, and logs one note activity entry.
func (m *Manager) AddNote(n project.Note) (project.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return project.Note{}, false
	}

	if n.ID == "" {
		n.ID = m.ids.NewID()
	}
	if n.Author == "" {
		n.Author = m.gateway.Service().Username()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = project.NowISO(m.clock.Now())
	}

	doc := m.doc.WithNote(n)
	m.doc = &doc
	m.dirty = true

	target := n.FilePath
	if target == "" {
		target = "project"
	}
	m.logActivityLocked(project.CategoryNote, "add", "Added note on "+target, n.FilePath, nil)
	return n, true
}

// UpdateNote replaces the text of an existing note, stamping updated_at.
func (m *Manager) UpdateNote(id, text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return false
	}

	doc, ok := m.doc.WithNoteText(id, text, project.NowISO(m.clock.Now()))
	if !ok {
		return false
	}
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryNote, "update", "Updated note "+id, "", nil)
	return true
}

// RemoveNote deletes the note with the given ID.
func (m *Manager) RemoveNote(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return false
	}

	doc, ok := m.doc.WithoutNote(id)
	if !ok {
		return false
	}
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryNote, "remove", "Removed note "+id, "", nil)
	return true
}

// AddTag stores a tag, filling in ID, author and creation time when absent,
// and logs one tag activity entry.
func (m *Manager) AddTag(t project.Tag) (project.Tag, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return project.Tag{}, false
	}

	if t.ID == "" {
		t.ID = m.ids.NewID()
	}
	if t.Author == "" {
		t.Author = m.gateway.Service().Username()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = project.NowISO(m.clock.Now())
	}

	doc := m.doc.WithTag(t)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryTag, "add", fmt.Sprintf("Tagged %s as %q", t.FilePath, t.Name), t.FilePath, nil)
	return t, true
}

// RemoveTag deletes the tag with the given ID.
func (m *Manager) RemoveTag(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return false
	}

	doc, ok := m.doc.WithoutTag(id)
	if !ok {
		return false
	}
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryTag, "remove", "Removed tag "+id, "", nil)
	return true
}

// AddRecentSearch pushes a term onto the bounded recent-searches list and
// logs one search activity entry.
func (m *Manager) AddRecentSearch(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil || term == "" {
		return
	}

	doc := m.doc.WithRecentSearch(term)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategorySearch, "search", "Searched for "+term, "", nil)
}

// AddSavedSearch stores a named reusable search.
func (m *Manager) AddSavedSearch(s project.SavedSearch) (project.SavedSearch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return project.SavedSearch{}, false
	}

	if s.ID == "" {
		s.ID = m.ids.NewID()
	}
	if s.CreatedAt == "" {
		s.CreatedAt = project.NowISO(m.clock.Now())
	}

	doc := m.doc.WithSavedSearch(s)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategorySearch, "save", "Saved search "+s.Name, "", nil)
	return s, true
}

// RecordFileHash appends a hash observation to the file's append-only
// history and logs one hash activity entry.
func (m *Manager) RecordFileHash(filePath string, rec project.HashRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return
	}

	if rec.Timestamp == "" {
		rec.Timestamp = project.NowISO(m.clock.Now())
	}

	doc := m.doc.WithHashRecord(filePath, rec)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryHash, "compute",
		fmt.Sprintf("Computed %s hash of %s", rec.Algorithm, filePath),
		filePath, map[string]string{"algorithm": rec.Algorithm, "value": rec.Value})
}

// UpdateIntegrity upserts the integrity record for a processed database and
// logs one database activity entry. Records with an unknown status are
// rejected.
func (m *Manager) UpdateIntegrity(dbPath string, rec project.IntegrityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return newStateError(ErrCodeNoProject, "no project loaded")
	}
	if !project.ValidStatuses[rec.Status] {
		return fmt.Errorf("invalid integrity status %q", rec.Status)
	}

	doc := m.doc.WithIntegrity(dbPath, rec)
	m.doc = &doc
	m.dirty = true
	m.logActivityLocked(project.CategoryDatabase, "verify",
		fmt.Sprintf("Integrity check of %s: %s", dbPath, rec.Status), dbPath, nil)
	return nil
}

// SaveOptions carries externally-held UI state folded into the document at
// save time. Zero-valued fields keep the document's current values; the
// hash history is merged append-only rather than replaced.
type SaveOptions struct {
	Tabs              []project.EvidenceTab
	ActiveTabPath     string
	OpenDirectories   []string
	RecentDirectories []string
	SelectedFile      string
	HashHistory       map[string][]project.HashRecord
	UIState           *project.UIState
	FilterState       *project.FilterState
}

// Save persists the current document. Path resolution order: customPath if
// given, else the known project path, else an interactive prompt. On
// success the manager adopts the resolved path, clears the dirty flag, and
// logs a save activity entry. The save entry itself stays unsaved until the
// next save: the stored checksum covers exactly what reached disk.
//
// Reentrancy is refused: a second save while one is in flight returns a
// SAVE_IN_FLIGHT error rather than queueing.
func (m *Manager) Save(ctx context.Context, opts SaveOptions, customPath string) storage.SaveResult {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return storage.SaveResult{Err: newStateError(ErrCodeNoProject, "no project loaded")}
	}
	if m.saving {
		m.mu.Unlock()
		return storage.SaveResult{Err: newStateError(ErrCodeSaveInFlight, "a save is already in flight")}
	}
	if m.loading {
		m.mu.Unlock()
		return storage.SaveResult{Err: newStateError(ErrCodeLoadInFlight, "a load is in flight; retry after it completes")}
	}

	svc := m.gateway.Service()
	now := m.clock.Now()
	snapshot := buildSnapshot(*m.doc, opts, now, svc.Username(), svc.AppVersion(), m.logger)
	knownPath := m.path
	rootPath := m.doc.RootPath
	m.saving = true
	m.mu.Unlock()

	finish := func(res storage.SaveResult) storage.SaveResult {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.saving = false
		if res.Success {
			m.path = res.Path
			committed := snapshot
			m.doc = &committed
			m.logActivityLocked(project.CategoryProject, "save", "Saved project to "+res.Path, res.Path, nil)
			// The save entry is in-memory bookkeeping, not an unsaved change.
			m.dirty = false
			m.startAutoSaveLocked()
		}
		return res
	}

	path, cancelled, err := m.gateway.ResolveSavePath(customPath, knownPath, rootPath)
	if err != nil {
		return finish(storage.SaveResult{Err: err})
	}
	if cancelled {
		return finish(storage.SaveResult{Cancelled: true})
	}

	return finish(m.gateway.Save(ctx, snapshot, path))
}

// SaveAs always prompts for a destination, ignoring the known project path.
func (m *Manager) SaveAs(ctx context.Context, opts SaveOptions) storage.SaveResult {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return storage.SaveResult{Err: newStateError(ErrCodeNoProject, "no project loaded")}
	}
	root := m.doc.RootPath
	m.mu.Unlock()

	path, cancelled, err := m.gateway.ResolveSavePath("", "", root)
	if err != nil {
		return storage.SaveResult{Err: err}
	}
	if cancelled {
		return storage.SaveResult{Cancelled: true}
	}
	return m.Save(ctx, opts, path)
}

// Load reads a document from disk and installs it: any session left open by
// a previous runtime instance is closed, a fresh session is started for the
// runtime user, a load activity entry is logged, and the autosave timer is
// restarted per the loaded settings. The installed document is dirty: the
// new session exists only in memory.
//
// Refused with UNSAVED_CHANGES when the current document has unsaved
// changes and force is not set.
//
// While the load reads from disk, saves (manual and autosave ticks alike)
// are refused with LOAD_IN_FLIGHT: a save snapshotted before the load
// commits would reinstall the pre-load document on completion.
func (m *Manager) Load(ctx context.Context, customPath string, force bool) storage.LoadResult {
	m.mu.Lock()
	if m.saving {
		m.mu.Unlock()
		return storage.LoadResult{Err: newStateError(ErrCodeSaveInFlight, "a save is in flight; retry after it completes")}
	}
	if m.loading {
		m.mu.Unlock()
		return storage.LoadResult{Err: newStateError(ErrCodeLoadInFlight, "a load is already in flight")}
	}
	if m.doc != nil && m.dirty && !force {
		m.mu.Unlock()
		return storage.LoadResult{Err: newStateError(ErrCodeUnsavedChanges, "unsaved changes; save first or force the load")}
	}
	m.loading = true
	m.mu.Unlock()

	finish := func(res storage.LoadResult, install bool) storage.LoadResult {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.loading = false
		if !install {
			return res
		}

		svc := m.gateway.Service()
		now := m.clock.Now()

		m.sched.Stop()
		doc := res.Project.CloseStaleSessions(now)
		doc, _ = doc.StartSession(svc.Username(), m.hostname, svc.AppVersion(), now, m.ids)
		m.doc = &doc
		m.path = res.Path
		m.dirty = true
		m.logActivityLocked(project.CategoryProject, "load", "Loaded project from "+res.Path, res.Path, nil)
		m.startAutoSaveLocked()

		installed := *m.doc
		res.Project = &installed
		return res
	}

	path, cancelled, err := m.gateway.ResolveOpenPath(customPath)
	if err != nil {
		return finish(storage.LoadResult{Err: err}, false)
	}
	if cancelled {
		return finish(storage.LoadResult{Cancelled: true}, false)
	}

	res := m.gateway.Load(ctx, path, m.clock.Now())
	if res.Err != nil || res.Project == nil {
		return finish(res, false)
	}
	return finish(res, true)
}

// autosaveEligible is the scheduler gate: a tick proceeds only when a dirty
// document with a known path is loaded and no save or load is in flight.
func (m *Manager) autosaveEligible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc != nil && m.dirty && m.path != "" && !m.saving && !m.loading
}

// startAutoSaveLocked (re)starts the autosave timer to match the loaded
// document's settings. Callers must hold m.mu.
func (m *Manager) startAutoSaveLocked() {
	m.sched.Stop()
	if !m.autosaveEnabled || m.doc == nil || !m.doc.Settings.AutoSave {
		return
	}

	interval := m.doc.Settings.AutoSaveIntervalSeconds
	if interval <= 0 {
		interval = project.DefaultAutoSaveIntervalSeconds
	}
	m.sched.Start(time.Duration(interval) * time.Second)
}

// buildSnapshot folds save-time UI state into the document and stamps save
// metadata. The checksum is computed from the resulting business fields
// before any in-memory-only bookkeeping happens, so the artifact on disk
// verifies against itself.
func buildSnapshot(doc project.Document, opts SaveOptions, now time.Time, user, appVersion string, logger *log.Logger) project.Document {
	if opts.Tabs != nil {
		doc = doc.WithTabs(opts.Tabs, opts.ActiveTabPath)
	}
	if opts.OpenDirectories != nil {
		doc.OpenDirectories = opts.OpenDirectories
	}
	if opts.RecentDirectories != nil {
		doc.RecentDirectories = opts.RecentDirectories
	}
	if opts.SelectedFile != "" {
		doc.SelectedFile = opts.SelectedFile
	}
	if opts.UIState != nil {
		doc = doc.WithUIState(*opts.UIState)
	}
	if opts.FilterState != nil {
		doc = doc.WithFilterState(*opts.FilterState)
	}
	doc = mergeHashHistory(doc, opts.HashHistory)

	doc.Version = project.SchemaVersion
	doc.SavedAt = project.NowISO(now)
	doc.LastSavedBy = user
	doc.LastSavedWith = appVersion

	checksum, err := project.Checksum(doc)
	if err != nil {
		// A document that cannot be checksummed can still be saved; the
		// load side treats a missing checksum as unverifiable, not invalid.
		logger.Printf("compute checksum: %v", err)
		doc.Checksum = ""
		return doc
	}
	doc.Checksum = checksum
	return doc
}

// mergeHashHistory merges externally-held hash history into the document
// append-only: per path, the longer of the two lists wins. Histories never
// shrink on save.
func mergeHashHistory(doc project.Document, incoming map[string][]project.HashRecord) project.Document {
	if len(incoming) == 0 {
		return doc
	}

	merged := make(map[string][]project.HashRecord, len(doc.HashHistory)+len(incoming))
	for path, records := range doc.HashHistory {
		merged[path] = records
	}
	for path, records := range incoming {
		if len(records) >= len(merged[path]) {
			merged[path] = records
		}
	}
	doc.HashHistory = merged
	return doc
}
