package project

import "maps"

// Integrity statuses for processed-database records. The caller computes the
// hash comparison; the tracker only stores its result.
const (
	// StatusNewBaseline marks the first record ever stored for a path.
	// Baseline and current hash are identical by construction.
	StatusNewBaseline = "new_baseline"

	// StatusUnchanged means the current hash equals the stored baseline.
	StatusUnchanged = "unchanged"

	// StatusModified means the current hash differs from the baseline.
	// Changes carries caller-supplied human-readable deltas.
	StatusModified = "modified"

	// StatusNotVerified means no current hash was computed for this check.
	StatusNotVerified = "not_verified"
)

// ValidStatuses defines the allowed integrity statuses.
var ValidStatuses = map[string]bool{
	StatusNewBaseline: true,
	StatusUnchanged:   true,
	StatusModified:    true,
	StatusNotVerified: true,
}

// IntegrityRecord is the baseline-vs-current hash state for one processed
// database, keyed by absolute path in the document.
type IntegrityRecord struct {
	FileSize     int64            `json:"file_size"`
	BaselineHash string           `json:"baseline_hash"`
	BaselineAt   string           `json:"baseline_at"`
	CurrentHash  string           `json:"current_hash,omitempty"`
	CurrentAt    string           `json:"current_at,omitempty"`
	Status       string           `json:"status"`
	Metrics      map[string]int64 `json:"metrics,omitempty"`
	Changes      []string         `json:"changes,omitempty"`
}

// WithIntegrity upserts the record for path with last-write-wins semantics.
// The tracker is a passive store: no status transitions are computed here.
func (d Document) WithIntegrity(path string, rec IntegrityRecord) Document {
	out := d
	integrity := maps.Clone(d.ProcessedDatabases.Integrity)
	if integrity == nil {
		integrity = map[string]IntegrityRecord{}
	}
	integrity[path] = rec
	out.ProcessedDatabases.Integrity = integrity
	return out
}

// CompareIntegrity builds the record that upserting a fresh observation of
// path should store, given the previously stored record (nil for first
// sight) and the newly computed hash (empty when no hash was computed).
//
// This is a convenience for callers that hold the hash result and want the
// status derived consistently:
//   - no prior record        -> new_baseline (baseline = current)
//   - empty current hash     -> not_verified (baseline preserved)
//   - current == baseline    -> unchanged
//   - current != baseline    -> modified (changes supplied by caller)
func CompareIntegrity(prev *IntegrityRecord, currentHash string, fileSize int64, at string, changes []string) IntegrityRecord {
	if prev == nil {
		return IntegrityRecord{
			FileSize:     fileSize,
			BaselineHash: currentHash,
			BaselineAt:   at,
			CurrentHash:  currentHash,
			CurrentAt:    at,
			Status:       StatusNewBaseline,
		}
	}

	rec := *prev
	rec.FileSize = fileSize
	if currentHash == "" {
		rec.Status = StatusNotVerified
		return rec
	}

	rec.CurrentHash = currentHash
	rec.CurrentAt = at
	if currentHash == rec.BaselineHash {
		rec.Status = StatusUnchanged
		rec.Changes = nil
		return rec
	}

	rec.Status = StatusModified
	rec.Changes = changes
	return rec
}
