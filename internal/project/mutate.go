package project

import "slices"

// Transforms for bookmarks, notes, tags, searches, tabs and UI state.
// All of them follow CP-1: value receiver in, new value out.

// MaxRecentSearches bounds the recent-searches list, newest first.
const MaxRecentSearches = 25

// WithUIState replaces the stored UI state wholesale.
func (d Document) WithUIState(ui UIState) Document {
	out := d
	out.UIState = ui
	return out
}

// WithFilterState replaces the stored filter state wholesale.
func (d Document) WithFilterState(fs FilterState) Document {
	out := d
	out.FilterState = fs
	return out
}

// WithSettings replaces the stored settings wholesale.
func (d Document) WithSettings(s Settings) Document {
	out := d
	out.Settings = s
	return out
}

// WithBookmark appends a bookmark.
func (d Document) WithBookmark(b Bookmark) Document {
	out := d
	out.Bookmarks = append(slices.Clone(d.Bookmarks), b)
	return out
}

// WithoutBookmark removes the bookmark with the given ID. Returns the
// receiver unchanged (and false) when the ID is unknown.
func (d Document) WithoutBookmark(id string) (Document, bool) {
	idx := slices.IndexFunc(d.Bookmarks, func(b Bookmark) bool { return b.ID == id })
	if idx < 0 {
		return d, false
	}
	out := d
	out.Bookmarks = slices.Delete(slices.Clone(d.Bookmarks), idx, idx+1)
	return out, true
}

// FindBookmark returns the bookmark with the given ID, or nil.
func (d Document) FindBookmark(id string) *Bookmark {
	for _, b := range d.Bookmarks {
		if b.ID == id {
			return &b
		}
	}
	return nil
}

// WithNote appends a note.
func (d Document) WithNote(n Note) Document {
	out := d
	out.Notes = append(slices.Clone(d.Notes), n)
	return out
}

// WithNoteText replaces the text of the note with the given ID and stamps
// updated_at. Returns the receiver unchanged (and false) for unknown IDs.
func (d Document) WithNoteText(id, text, updatedAt string) (Document, bool) {
	idx := slices.IndexFunc(d.Notes, func(n Note) bool { return n.ID == id })
	if idx < 0 {
		return d, false
	}
	out := d
	out.Notes = slices.Clone(d.Notes)
	n := out.Notes[idx]
	n.Text = text
	n.UpdatedAt = updatedAt
	out.Notes[idx] = n
	return out, true
}

// WithoutNote removes the note with the given ID.
func (d Document) WithoutNote(id string) (Document, bool) {
	idx := slices.IndexFunc(d.Notes, func(n Note) bool { return n.ID == id })
	if idx < 0 {
		return d, false
	}
	out := d
	out.Notes = slices.Delete(slices.Clone(d.Notes), idx, idx+1)
	return out, true
}

// WithTag appends a tag.
func (d Document) WithTag(t Tag) Document {
	out := d
	out.Tags = append(slices.Clone(d.Tags), t)
	return out
}

// WithoutTag removes the tag with the given ID.
func (d Document) WithoutTag(id string) (Document, bool) {
	idx := slices.IndexFunc(d.Tags, func(t Tag) bool { return t.ID == id })
	if idx < 0 {
		return d, false
	}
	out := d
	out.Tags = slices.Delete(slices.Clone(d.Tags), idx, idx+1)
	return out, true
}

// WithRecentSearch pushes term to the front of recent_searches, dedupes any
// earlier occurrence, and trims the list to MaxRecentSearches.
func (d Document) WithRecentSearch(term string) Document {
	recent := make([]string, 0, len(d.RecentSearches)+1)
	recent = append(recent, term)
	for _, s := range d.RecentSearches {
		if s != term {
			recent = append(recent, s)
		}
	}
	if len(recent) > MaxRecentSearches {
		recent = recent[:MaxRecentSearches]
	}

	out := d
	out.RecentSearches = recent
	return out
}

// WithSavedSearch appends a saved search.
func (d Document) WithSavedSearch(s SavedSearch) Document {
	out := d
	out.SavedSearches = append(slices.Clone(d.SavedSearches), s)
	return out
}

// WithHashRecord appends rec to the hash history of path. History entries
// are append-only (CP-3); nothing is ever rewritten or removed.
func (d Document) WithHashRecord(path string, rec HashRecord) Document {
	out := d
	history := make(map[string][]HashRecord, len(d.HashHistory)+1)
	for k, v := range d.HashHistory {
		history[k] = v
	}
	history[path] = append(slices.Clone(history[path]), rec)
	out.HashHistory = history
	return out
}

// WithTabs replaces the open-tab list and active tab wholesale from the
// freshest externally-held UI state.
func (d Document) WithTabs(tabs []EvidenceTab, activeTabPath string) Document {
	out := d
	out.Tabs = slices.Clone(tabs)
	out.ActiveTabPath = activeTabPath
	return out
}
