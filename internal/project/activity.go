package project

import "slices"

// Activity categories. Every audit entry carries exactly one.
const (
	CategoryFile     = "file"
	CategoryHash     = "hash"
	CategorySearch   = "search"
	CategoryExport   = "export"
	CategoryBookmark = "bookmark"
	CategoryNote     = "note"
	CategoryTag      = "tag"
	CategoryDatabase = "database"
	CategoryProject  = "project"
	CategorySystem   = "system"
)

// ValidCategories defines the allowed activity categories.
var ValidCategories = map[string]bool{
	CategoryFile:     true,
	CategoryHash:     true,
	CategorySearch:   true,
	CategoryExport:   true,
	CategoryBookmark: true,
	CategoryNote:     true,
	CategoryTag:      true,
	CategoryDatabase: true,
	CategoryProject:  true,
	CategorySystem:   true,
}

// WithActivity prepends entry to the activity log and evicts from the tail
// so the log never exceeds ActivityLogLimit (CP-2). Newest stays first.
//
// The tracking toggle (settings.track_activity) is enforced one layer up in
// the state manager, which skips the call entirely when tracking is off;
// this transform always appends.
func (d Document) WithActivity(entry ActivityEntry) Document {
	limit := d.ActivityLogLimit
	if limit <= 0 {
		limit = DefaultActivityLogLimit
	}

	log := make([]ActivityEntry, 0, min(len(d.ActivityLog)+1, limit))
	log = append(log, entry)
	log = append(log, d.ActivityLog...)
	if len(log) > limit {
		log = log[:limit]
	}

	out := d
	out.ActivityLog = log
	return out
}

// ActivityByCategory returns the entries matching category, newest first.
// An empty category returns the whole log.
func (d Document) ActivityByCategory(category string) []ActivityEntry {
	if category == "" {
		return slices.Clone(d.ActivityLog)
	}
	var out []ActivityEntry
	for _, e := range d.ActivityLog {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
