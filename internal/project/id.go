package project

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces collision-resistant identifiers usable as primary
// keys for sessions, bookmarks, notes, and activity entries.
type IDGenerator interface {
	NewID() string
}

// TimeOrderedGenerator generates IDs with a time-ordered prefix and a random
// suffix: base-36 Unix milliseconds, a dash, then the first 12 hex digits of
// a UUIDv7.
//
// The prefix makes IDs sortable by creation time, which is helpful when
// scanning raw documents; the suffix keeps them collision-resistant when two
// IDs are minted in the same millisecond.
//
// Thread-safety: TimeOrderedGenerator is stateless and safe for concurrent use.
type TimeOrderedGenerator struct{}

// NewID creates a new identifier.
//
// Format: "mf3k2a1x-018f2c3d4e5f" (prefix length varies with the epoch).
//
// Panics if UUID generation fails (should never happen in practice).
func (g TimeOrderedGenerator) NewID() string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")[:12]
	return prefix + "-" + suffix
}

// FixedIDGenerator returns predetermined IDs for testing.
//
// This enables deterministic document construction and golden fixture
// comparison. Tests provide a known sequence of IDs and verify exact output.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns IDs in order.
//
// Example:
//
//	gen := NewFixedIDGenerator("id-1", "id-2")
//	gen.NewID() // "id-1"
//	gen.NewID() // "id-2"
//	gen.NewID() // panic: all ids exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// NewID returns the next predetermined ID.
//
// Panics if all IDs have been consumed. This is a fail-fast approach to
// catch test misconfiguration (test minted more IDs than expected).
func (g *FixedIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// NowISO returns a normalized ISO-8601 instant in UTC with second precision.
// All document timestamps go through this function so that serialized
// documents compare bytewise across hosts and timezones.
func NowISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseISO parses an instant produced by NowISO. Returns the zero time and
// an error for malformed input.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
