// Package state owns the in-memory project state: the currently loaded
// document, its dirty flag, the session lifecycle, and the autosave timer.
//
// The Manager is the single entry point for UI-facing mutations. Every
// mutator reads the current document, computes a new immutable value via a
// transform from the project package, replaces the stored document
// wholesale, logs one matching activity entry, and sets the dirty flag.
// Whole-document replacement is the invariant the rest of the design rests
// on: any concurrent reader (UI layer, autosave tick) observes one
// fully-consistent document per transition, never a partial update.
//
// The original host runs single-threaded and cooperative; this port adds an
// explicit mutex around "check dirty -> snapshot -> save -> clear dirty" so
// the same guarantees hold under goroutines.
package state
