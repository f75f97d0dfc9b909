package state

import (
	"errors"
	"fmt"
)

// StateError represents a usage or lifecycle error in the state manager.
type StateError struct {
	// Code identifies the error category.
	Code StateErrorCode

	// Message is a human-readable description.
	Message string
}

// StateErrorCode categorizes state-manager errors.
type StateErrorCode string

const (
	// ErrCodeNoProject indicates an operation that needs a loaded document.
	ErrCodeNoProject StateErrorCode = "NO_PROJECT"

	// ErrCodeProjectLoaded indicates a create attempt while a document is
	// already loaded.
	ErrCodeProjectLoaded StateErrorCode = "PROJECT_LOADED"

	// ErrCodeSessionOpen indicates a second session was opened while one is
	// still open. Session open/close must be strictly paired by the caller.
	ErrCodeSessionOpen StateErrorCode = "SESSION_OPEN"

	// ErrCodeSaveInFlight indicates a save was requested while a previous
	// save is still running.
	ErrCodeSaveInFlight StateErrorCode = "SAVE_IN_FLIGHT"

	// ErrCodeLoadInFlight indicates a save or load was requested while a
	// load is still reading from disk. Committing a pre-load snapshot after
	// the load installs its document would silently discard the load.
	ErrCodeLoadInFlight StateErrorCode = "LOAD_IN_FLIGHT"

	// ErrCodeUnsavedChanges indicates a destructive load/clear was refused
	// because unsaved changes exist and force was not given.
	ErrCodeUnsavedChanges StateErrorCode = "UNSAVED_CHANGES"
)

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnsavedChanges returns true if the error is an unsaved-changes refusal.
// Uses errors.As to handle wrapped errors.
func IsUnsavedChanges(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnsavedChanges
	}
	return false
}

// IsSaveInFlight returns true if the error is a reentrancy refusal.
func IsSaveInFlight(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == ErrCodeSaveInFlight
	}
	return false
}

// IsLoadInFlight returns true if the error is a load-in-progress refusal.
func IsLoadInFlight(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == ErrCodeLoadInFlight
	}
	return false
}

// IsNoProject returns true if the error indicates no loaded document.
func IsNoProject(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == ErrCodeNoProject
	}
	return false
}

func newStateError(code StateErrorCode, message string) *StateError {
	return &StateError{Code: code, Message: message}
}
