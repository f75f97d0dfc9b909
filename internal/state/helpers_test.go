package state

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ffxlabs/ffxproj/internal/project"
	"github.com/ffxlabs/ffxproj/internal/storage"
)

var testInstant = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// memoryService is an in-memory storage.Service: documents live in a map
// keyed by path. Error injection via saveErr/loadErr.
type memoryService struct {
	mu      sync.Mutex
	files   map[string]project.Document
	saveErr error
	loadErr error
	saves   int
}

func newMemoryService() *memoryService {
	return &memoryService{files: map[string]project.Document{}}
}

func (s *memoryService) CheckExists(rootPath string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.DefaultPath(rootPath)
	_, found := s.files[path]
	return path, found, nil
}

func (s *memoryService) DefaultPath(rootPath string) string {
	return filepath.Join(rootPath, filepath.Base(rootPath)+project.FileExtension)
}

func (s *memoryService) Save(doc project.Document, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.files[path] = doc
	s.saves++
	return 1024, nil
}

func (s *memoryService) Load(path string) (project.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return project.Document{}, s.loadErr
	}
	doc, found := s.files[path]
	if !found {
		return project.Document{}, fmt.Errorf("read %s: no such file", path)
	}
	return doc, nil
}

func (s *memoryService) Username() string   { return "alice" }
func (s *memoryService) AppVersion() string { return "0.3.0" }

func (s *memoryService) stored(path string) (project.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found := s.files[path]
	return doc, found
}

// gatedService blocks Load until released, letting tests act inside the
// load's I/O window.
type gatedService struct {
	*memoryService
	loadStarted chan struct{}
	release     chan struct{}
	once        sync.Once
}

func newGatedService() *gatedService {
	return &gatedService{
		memoryService: newMemoryService(),
		loadStarted:   make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (s *gatedService) Load(path string) (project.Document, error) {
	s.once.Do(func() { close(s.loadStarted) })
	<-s.release
	return s.memoryService.Load(path)
}

// cannedPrompter answers prompts with fixed values.
type cannedPrompter struct {
	openPath   string
	savePath   string
	cancelOpen bool
	cancelSave bool
}

func (p *cannedPrompter) OpenPath() (string, bool, error) {
	if p.cancelOpen {
		return "", false, nil
	}
	return p.openPath, true, nil
}

func (p *cannedPrompter) SavePath(defaultPath string) (string, bool, error) {
	if p.cancelSave {
		return "", false, nil
	}
	if p.savePath != "" {
		return p.savePath, true, nil
	}
	return defaultPath, true, nil
}

// seqIDGenerator hands out deterministic sequential IDs.
type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type testHarness struct {
	mgr      *Manager
	svc      *memoryService
	prompter *cannedPrompter
	clock    *ManualClock
}

func newTestHarness(t *testing.T, opts ...Option) *testHarness {
	t.Helper()

	svc := newMemoryService()
	prompter := &cannedPrompter{}
	clock := NewManualClock(testInstant)

	base := []Option{
		WithClock(clock),
		WithIDGenerator(&seqIDGenerator{}),
		WithHostname("workstation-7"),
		WithAutosaveDisabled(),
	}
	mgr := NewManager(
		storage.NewGateway(svc, prompter, nil, nil),
		append(base, opts...)...,
	)
	t.Cleanup(func() { mgr.ClearProject(true) })

	return &testHarness{mgr: mgr, svc: svc, prompter: prompter, clock: clock}
}
