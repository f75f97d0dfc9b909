package storage

import (
	"errors"
	"fmt"
)

// Error codes - unified across the storage boundary.
const (
	ErrCodeReadFailed   = "S001" // File read error
	ErrCodeWriteFailed  = "S002" // File write error
	ErrCodeBadJSON      = "S003" // Document is not valid JSON
	ErrCodeSchema       = "S004" // Document violates the schema
	ErrCodeVersionAhead = "S005" // Document written by a newer tool
	ErrCodeCatalog      = "S006" // Catalog query/update error
	ErrCodePanic        = "S007" // Collaborator panicked inside the gateway
)

// StorageError represents a failure at the persistence boundary with a
// structured code for diagnostics and result mapping.
type StorageError struct {
	Code    string // One of the ErrCode constants above
	Message string // Human-readable description
	Path    string // Affected file path, when known
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsSchemaError returns true if err is a schema or JSON validation failure.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeSchema || se.Code == ErrCodeBadJSON
	}
	return false
}

// IsVersionAheadError returns true if err marks a document written by a
// newer schema version than this tool understands.
func IsVersionAheadError(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeVersionAhead
	}
	return false
}
