// Package storage is the persistence boundary for project documents.
//
// It defines the Service interface (the external collaborator performing
// durable I/O and runtime identity lookups) plus a filesystem-backed
// implementation, a SQLite catalog of known projects, CUE-based document
// validation, and the Gateway that ties them together.
//
// # Error Discipline
//
// Nothing escapes the Gateway as a panic. Collaborator failures are caught
// at this boundary and converted into discriminated result values
// (SaveResult, LoadResult) with an Err field; a user dismissing a path
// prompt is a benign Cancelled result, not an error.
//
// # Database Configuration (catalog)
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package storage
