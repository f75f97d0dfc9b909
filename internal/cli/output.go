package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ffxlabs/ffxproj/internal/state"
	"github.com/ffxlabs/ffxproj/internal/storage"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitVerifyFailed = 1 // verification found drift (checksum or integrity)
	ExitCommandError = 2 // command error (bad paths, unreadable files, etc.)
)

// ExitError carries a process exit code alongside the error message.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error. Non-ExitError errors
// map to ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Response is the JSON envelope every command emits in json format.
type Response struct {
	Status   string         `json:"status"` // "ok" or "error"
	Data     any            `json:"data,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Error    *ResponseError `json:"error,omitempty"`
}

// ResponseError identifies a failure by stable code plus message.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Printer renders command output in the configured format. Text rendering
// is supplied per call site; the JSON envelope is uniform.
type Printer struct {
	Format  string
	Out     io.Writer
	ErrOut  io.Writer // diagnostics; must not pollute JSON on Out
	Verbose bool
}

func newPrinter(opts *RootOptions, out, errOut io.Writer) *Printer {
	return &Printer{Format: opts.Format, Out: out, ErrOut: errOut, Verbose: opts.Verbose}
}

// Success emits data in the JSON envelope, or runs the text renderer.
// Warnings precede text output and travel inside the envelope for JSON.
func (p *Printer) Success(data any, warnings []string, text func(w io.Writer)) error {
	if p.Format == "json" {
		return p.encode(Response{Status: "ok", Data: data, Warnings: warnings})
	}

	for _, w := range warnings {
		fmt.Fprintf(p.Out, "warning: %s\n", w)
	}
	if text != nil {
		text(p.Out)
	}
	return nil
}

// Fail emits the error in the configured format and returns an ExitError
// with the given exit code for main to unwrap.
func (p *Printer) Fail(exitCode int, err error) error {
	code := errorCode(err)
	if p.Format == "json" {
		if encErr := p.encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: err.Error()},
		}); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintf(p.Out, "error [%s]: %s\n", code, err.Error())
	}
	return &ExitError{Code: exitCode, Message: err.Error(), Err: err}
}

// Verbosef logs a diagnostic line when verbose mode is on. Always goes to
// ErrOut so JSON output stays parseable.
func (p *Printer) Verbosef(format string, args ...any) {
	if !p.Verbose {
		return
	}
	fmt.Fprintf(p.ErrOut, format+"\n", args...)
}

func (p *Printer) encode(resp Response) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// errorCode maps known error types to their stable codes so scripted
// callers can branch without parsing messages.
func errorCode(err error) string {
	var storageErr *storage.StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Code
	}
	var stateErr *state.StateError
	if errors.As(err, &stateErr) {
		return string(stateErr.Code)
	}
	return "E000"
}
