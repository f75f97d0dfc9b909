package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var catalogSchemaSQL string

// Catalog schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on projects.last_opened_at
const catalogSchemaVersion = 1

// Catalog is the SQLite-backed index of every project file this tool has
// saved or loaded, keyed by root directory. It backs fast existence lookups
// and the recent-projects listing; losing it is harmless (project files on
// disk remain authoritative).
type Catalog struct {
	db *sql.DB
}

// CatalogEntry is one known project.
type CatalogEntry struct {
	RootPath     string `json:"root_path"`
	ProjectPath  string `json:"project_path"`
	Name         string `json:"name"`
	LastUser     string `json:"last_user"`
	OpenedCount  int64  `json:"opened_count"`
	LastOpenedAt string `json:"last_opened_at,omitempty"`
	LastSavedAt  string `json:"last_saved_at,omitempty"`
}

// OpenCatalog creates or opens the catalog database at the given path.
// Applies required pragmas and migrations automatically; idempotent.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyCatalogPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applyCatalogSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the catalog database. Safe on a nil receiver so callers can
// run without a catalog at all.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RecordSave upserts the catalog row for rootPath after a successful save.
func (c *Catalog) RecordSave(ctx context.Context, rootPath, projectPath, name, user, at string) error {
	if c == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO projects (root_path, project_path, name, last_user, last_saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(root_path) DO UPDATE SET
			project_path  = excluded.project_path,
			name          = excluded.name,
			last_user     = excluded.last_user,
			last_saved_at = excluded.last_saved_at
	`, rootPath, projectPath, name, user, at)
	if err != nil {
		return &StorageError{Code: ErrCodeCatalog, Message: fmt.Sprintf("record save: %v", err), Path: projectPath, Err: err}
	}
	return nil
}

// RecordLoad upserts the catalog row for rootPath after a successful load
// and bumps the opened counter.
func (c *Catalog) RecordLoad(ctx context.Context, rootPath, projectPath, name, user, at string) error {
	if c == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO projects (root_path, project_path, name, last_user, opened_count, last_opened_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(root_path) DO UPDATE SET
			project_path   = excluded.project_path,
			name           = excluded.name,
			last_user      = excluded.last_user,
			opened_count   = projects.opened_count + 1,
			last_opened_at = excluded.last_opened_at
	`, rootPath, projectPath, name, user, at)
	if err != nil {
		return &StorageError{Code: ErrCodeCatalog, Message: fmt.Sprintf("record load: %v", err), Path: projectPath, Err: err}
	}
	return nil
}

// Lookup returns the known project path for a root directory, if any.
func (c *Catalog) Lookup(ctx context.Context, rootPath string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	var projectPath string
	err := c.db.QueryRowContext(ctx, `
		SELECT project_path FROM projects WHERE root_path = ?
	`, rootPath).Scan(&projectPath)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Code: ErrCodeCatalog, Message: fmt.Sprintf("lookup: %v", err), Path: rootPath, Err: err}
	}
	return projectPath, true, nil
}

// Recent returns up to limit catalog entries, most recently opened first.
// Entries never opened sort last, by save time.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]CatalogEntry, error) {
	if c == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT root_path, project_path, name, last_user, opened_count, last_opened_at, last_saved_at
		FROM projects
		ORDER BY last_opened_at DESC, last_saved_at DESC, root_path ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, &StorageError{Code: ErrCodeCatalog, Message: fmt.Sprintf("recent: %v", err), Err: err}
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.RootPath, &e.ProjectPath, &e.Name, &e.LastUser, &e.OpenedCount, &e.LastOpenedAt, &e.LastSavedAt); err != nil {
			return nil, &StorageError{Code: ErrCodeCatalog, Message: fmt.Sprintf("scan recent: %v", err), Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Code: ErrCodeCatalog, Message: fmt.Sprintf("iterate recent: %v", err), Err: err}
	}
	return entries, nil
}

// applyCatalogPragmas sets required SQLite configuration.
func applyCatalogPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applyCatalogSchema creates tables if they don't exist and runs
// migrations. Idempotent.
func applyCatalogSchema(db *sql.DB) error {
	if _, err := db.Exec(catalogSchemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= catalogSchemaVersion {
		return nil
	}

	// v1 index ships in schema.sql via IF NOT EXISTS; databases created
	// before it existed only need the version stamp.
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", catalogSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}
