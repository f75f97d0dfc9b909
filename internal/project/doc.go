// Package project defines the serialized project document and the pure
// transforms that produce new document values.
//
// The Document is the single persisted artifact of the application: open
// evidence tabs, per-file hash history, processed-database integrity
// baselines, bookmarks/notes/tags, the activity audit trail, saved searches,
// and UI layout, all under one versioned JSON envelope.
//
// # Critical Patterns
//
// CP-1: Copy-On-Write Documents
//   - A Document is never mutated in place. Every transform is a method on a
//     Document VALUE returning a new Document. Any observer holding a
//     reference sees one fully-consistent document per transition.
//
// CP-2: Bounded Activity Log
//   - activity_log is newest-first and never exceeds ActivityLogLimit.
//     Eviction drops the oldest entries.
//
// CP-3: Append-Only Hash History
//   - hash_history entries per file path are only ever appended, never
//     rewritten or deleted.
//
// CP-4: Content-Addressed Checksums
//   - Document checksums use SHA-256 with domain separation over
//     NFC-normalized compact JSON (see canonical.go).
//
// All wall-clock instants are normalized ISO-8601 strings in UTC (NowISO).
package project
