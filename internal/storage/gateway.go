package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ffxlabs/ffxproj/internal/project"
)

// Gateway resolves project paths and mediates all document I/O with the
// external service. It is the only code allowed to call Service.Save and
// Service.Load, and it guarantees that no failure, error or panic alike,
// ever propagates past it as anything but a result value.
type Gateway struct {
	service  Service
	prompter Prompter
	catalog  *Catalog // optional; nil disables catalog bookkeeping
	logger   *log.Logger
}

// NewGateway creates a gateway. catalog may be nil; logger may be nil for
// silent operation.
func NewGateway(service Service, prompter Prompter, catalog *Catalog, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gateway{service: service, prompter: prompter, catalog: catalog, logger: logger}
}

// Service exposes the underlying collaborator for identity lookups.
func (g *Gateway) Service() Service { return g.service }

// CheckProjectExists resolves the conventional project path for a root
// directory. Falls back to the catalog when the conventional file is
// missing (the project may have been saved to a custom location).
func (g *Gateway) CheckProjectExists(ctx context.Context, rootPath string) (string, bool) {
	path, found, err := g.service.CheckExists(rootPath)
	if err != nil {
		g.logger.Printf("check exists %s: %v", rootPath, err)
	}
	if found {
		return path, true
	}

	path, found, err = g.catalog.Lookup(ctx, rootPath)
	if err != nil {
		g.logger.Printf("catalog lookup %s: %v", rootPath, err)
		return "", false
	}
	return path, found
}

// DefaultProjectPath returns the deterministic path for a root directory.
func (g *Gateway) DefaultProjectPath(rootPath string) string {
	return g.service.DefaultPath(rootPath)
}

// ResolveSavePath picks the output path for a save: the explicit argument
// if given, else the known project path, else an interactive prompt seeded
// with the conventional path for the document root.
//
// cancelled=true means the user dismissed the prompt; that is a benign
// outcome, not an error.
func (g *Gateway) ResolveSavePath(explicitPath, knownPath, rootPath string) (path string, cancelled bool, err error) {
	if explicitPath != "" {
		return explicitPath, false, nil
	}
	if knownPath != "" {
		return knownPath, false, nil
	}
	if g.prompter == nil {
		return "", false, fmt.Errorf("no project path known and no prompter available")
	}

	path, ok, err := g.prompter.SavePath(g.service.DefaultPath(rootPath))
	if err != nil {
		return "", false, fmt.Errorf("save prompt: %w", err)
	}
	if !ok {
		return "", true, nil
	}
	return path, false, nil
}

// ResolveOpenPath picks the input path for a load: the explicit argument if
// given, else an interactive prompt.
func (g *Gateway) ResolveOpenPath(explicitPath string) (path string, cancelled bool, err error) {
	if explicitPath != "" {
		return explicitPath, false, nil
	}
	if g.prompter == nil {
		return "", false, fmt.Errorf("no project path given and no prompter available")
	}

	path, ok, err := g.prompter.OpenPath()
	if err != nil {
		return "", false, fmt.Errorf("open prompt: %w", err)
	}
	if !ok {
		return "", true, nil
	}
	return path, false, nil
}

// Save persists a prepared document snapshot to path. The snapshot must
// already carry its save metadata and checksum; the gateway only performs
// I/O and catalog bookkeeping.
func (g *Gateway) Save(ctx context.Context, doc project.Document, path string) (result SaveResult) {
	defer func() {
		if r := recover(); r != nil {
			result = SaveResult{Err: &StorageError{
				Code:    ErrCodePanic,
				Message: fmt.Sprintf("save panicked: %v", r),
				Path:    path,
			}}
		}
	}()

	bytesWritten, err := g.service.Save(doc, path)
	if err != nil {
		return SaveResult{Err: err}
	}

	if err := g.catalog.RecordSave(ctx, doc.RootPath, path, doc.Name, doc.LastSavedBy, doc.SavedAt); err != nil {
		// Catalog bookkeeping is best-effort; the save itself succeeded.
		g.logger.Printf("catalog record save: %v", err)
	}

	return SaveResult{Success: true, Path: path, BytesWritten: bytesWritten}
}

// Load reads and validates the document at path and applies
// version-compatibility rules:
//
//   - version == SchemaVersion: loads cleanly
//   - version <  SchemaVersion: loads as-is with a warning (no migration
//     logic exists; older documents are JSON-compatible supersets)
//   - version >  SchemaVersion: refused, a newer tool wrote this file
//
// A checksum mismatch against the stored checksum is reported as a warning,
// not an error: the document may have been hand-edited or written by a
// build with different canonicalization.
func (g *Gateway) Load(ctx context.Context, path string, now time.Time) (result LoadResult) {
	defer func() {
		if r := recover(); r != nil {
			result = LoadResult{Err: &StorageError{
				Code:    ErrCodePanic,
				Message: fmt.Sprintf("load panicked: %v", r),
				Path:    path,
			}}
		}
	}()

	doc, err := g.service.Load(path)
	if err != nil {
		return LoadResult{Err: err}
	}

	var warnings []string
	switch {
	case doc.Version > project.SchemaVersion:
		return LoadResult{Err: &StorageError{
			Code:    ErrCodeVersionAhead,
			Message: fmt.Sprintf("document version %d is newer than supported version %d", doc.Version, project.SchemaVersion),
			Path:    path,
		}}
	case doc.Version < project.SchemaVersion:
		warnings = append(warnings, fmt.Sprintf(
			"document version %d predates current version %d; loaded as-is without migration",
			doc.Version, project.SchemaVersion))
	}

	if doc.Checksum != "" {
		computed, err := project.Checksum(doc)
		if err != nil {
			g.logger.Printf("recompute checksum for %s: %v", path, err)
		} else if computed != doc.Checksum {
			warnings = append(warnings, "stored checksum does not match document contents")
		}
	}

	if err := g.catalog.RecordLoad(ctx, doc.RootPath, path, doc.Name, g.service.Username(), project.NowISO(now)); err != nil {
		g.logger.Printf("catalog record load: %v", err)
	}

	return LoadResult{Project: &doc, Path: path, Warnings: warnings}
}

// Recent lists recently used projects from the catalog, newest first.
// Returns nil without error when no catalog is configured.
func (g *Gateway) Recent(ctx context.Context, limit int) ([]CatalogEntry, error) {
	return g.catalog.Recent(ctx, limit)
}
