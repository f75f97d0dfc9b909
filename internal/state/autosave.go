package state

import (
	"io"
	"log"
	"sync"
	"time"
)

// SaveFunc performs one save attempt on behalf of the scheduler.
type SaveFunc func() error

// Scheduler drives periodic autosaves. Each Start spins up one goroutine
// with one ticker; Stop tears it down. Ticks are gated twice: the
// caller-supplied gate (typically "document loaded, dirty, path known, no
// save in flight") and the presence of a registered SaveFunc. A tick that
// fails either gate is silently skipped; a tick whose save fails or panics
// is logged and the schedule continues.
//
// Thread-safety: all methods are safe for concurrent use.
type Scheduler struct {
	mu     sync.Mutex
	fn     SaveFunc
	gate   func() bool
	stop   chan struct{}
	logger *log.Logger
}

// NewScheduler creates a stopped scheduler. gate may be nil (always
// eligible); logger may be nil for silent operation.
func NewScheduler(gate func() bool, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{gate: gate, logger: logger}
}

// SetSaveFunc registers the save routine invoked on each eligible tick.
// Until one is registered, ticks are skipped.
func (s *Scheduler) SetSaveFunc(fn SaveFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

// Start begins ticking every interval. A running scheduler is restarted
// with the new interval. Non-positive intervals are a no-op.
func (s *Scheduler) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	stop := make(chan struct{})
	s.stop = stop
	go s.run(interval, stop)
}

// Stop halts ticking. Idempotent. Stop only signals the loop; it does not
// wait for an in-flight tick, which may hold locks the caller also holds.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Running reports whether the scheduler is currently ticking.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

func (s *Scheduler) run(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one autosave attempt. Failures are logged, never propagated:
// a broken disk must not kill the schedule.
func (s *Scheduler) tick() {
	s.mu.Lock()
	fn := s.fn
	gate := s.gate
	s.mu.Unlock()

	if fn == nil {
		return
	}
	if gate != nil && !gate() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("autosave panicked: %v", r)
		}
	}()

	if err := fn(); err != nil {
		s.logger.Printf("autosave failed: %v", err)
	}
}
