package project

import (
	"slices"
	"time"
)

// StartSession appends a new open session for user and marks it current.
//
// The caller must have ended any previously open session first: exactly one
// session per document may be open at a time while the document is loaded in
// a runtime instance. This function does not guard against a second open
// session; that is a usage error handled at the state-manager layer.
//
// Also records user in the document's users list if not already present.
func (d Document) StartSession(user, hostname, appVersion string, now time.Time, ids IDGenerator) (Document, Session) {
	session := Session{
		ID:         ids.NewID(),
		User:       user,
		StartedAt:  NowISO(now),
		Hostname:   hostname,
		AppVersion: appVersion,
	}

	out := d
	out.Sessions = append(slices.Clone(d.Sessions), session)
	out.CurrentSessionID = session.ID
	if !slices.Contains(d.Users, user) {
		out.Users = append(slices.Clone(d.Users), user)
	}
	return out, session
}

// EndCurrentSession closes the currently open session, stamping ended_at and
// a non-negative duration. No-op if no session is open.
func (d Document) EndCurrentSession(now time.Time) Document {
	idx := d.openSessionIndex()
	if idx < 0 {
		return d
	}

	out := d
	out.Sessions = slices.Clone(d.Sessions)

	s := out.Sessions[idx]
	s.EndedAt = NowISO(now)
	s.DurationSeconds = sessionDuration(s.StartedAt, now)
	out.Sessions[idx] = s
	out.CurrentSessionID = ""
	return out
}

// CloseStaleSessions ends every open session in the document. Used when a
// document is loaded: any session left open inside the stored artifact
// belongs to a previous runtime instance (possibly one that crashed) and
// must not survive into the new one.
func (d Document) CloseStaleSessions(now time.Time) Document {
	if d.openSessionIndex() < 0 {
		return d
	}

	out := d
	out.Sessions = slices.Clone(d.Sessions)
	for i, s := range out.Sessions {
		if !s.Open() {
			continue
		}
		s.EndedAt = NowISO(now)
		s.DurationSeconds = sessionDuration(s.StartedAt, now)
		out.Sessions[i] = s
	}
	out.CurrentSessionID = ""
	return out
}

// OpenSession returns the currently open session, or nil if none is open.
func (d Document) OpenSession() *Session {
	idx := d.openSessionIndex()
	if idx < 0 {
		return nil
	}
	s := d.Sessions[idx]
	return &s
}

// OpenSessionCount returns how many sessions are open. The document
// invariant is that this never exceeds 1 while loaded in a runtime instance.
func (d Document) OpenSessionCount() int {
	count := 0
	for _, s := range d.Sessions {
		if s.Open() {
			count++
		}
	}
	return count
}

func (d Document) openSessionIndex() int {
	for i := len(d.Sessions) - 1; i >= 0; i-- {
		if d.Sessions[i].Open() {
			return i
		}
	}
	return -1
}

// sessionDuration computes the elapsed seconds between an ISO start stamp
// and now, clamped to zero. A malformed start stamp yields zero rather than
// an error: session bookkeeping must never fail a close.
func sessionDuration(startedAt string, now time.Time) int64 {
	started, err := ParseISO(startedAt)
	if err != nil {
		return 0
	}
	secs := int64(now.UTC().Sub(started).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
