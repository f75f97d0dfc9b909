package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/ffxlabs/ffxproj/internal/project"
)

// FileService is the filesystem implementation of Service. One project file
// per root directory, named after the directory itself:
//
//	/cases/001  ->  /cases/001/001.ffxproj
//
// Writes are atomic: the document is written to a temp file in the target
// directory and renamed into place, so a crash mid-save never leaves a
// truncated project file.
type FileService struct {
	user    string
	version string
}

// NewFileService creates a FileService reporting the given user and app
// version. An empty user falls back to the OS account name, then $USER,
// then "unknown".
func NewFileService(username, appVersion string) *FileService {
	if username == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			username = u.Username
		} else if env := os.Getenv("USER"); env != "" {
			username = env
		} else {
			username = "unknown"
		}
	}
	return &FileService{user: username, version: appVersion}
}

// DefaultPath returns the deterministic project path for a root directory.
func (s *FileService) DefaultPath(rootPath string) string {
	return filepath.Join(rootPath, filepath.Base(rootPath)+project.FileExtension)
}

// CheckExists reports whether the conventional project file for rootPath
// exists on disk.
func (s *FileService) CheckExists(rootPath string) (string, bool, error) {
	path := s.DefaultPath(rootPath)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{
			Code:    ErrCodeReadFailed,
			Message: fmt.Sprintf("stat project file: %v", err),
			Path:    path,
			Err:     err,
		}
	}
	if info.IsDir() {
		return "", false, &StorageError{
			Code:    ErrCodeReadFailed,
			Message: "project path is a directory",
			Path:    path,
		}
	}
	return path, true, nil
}

// Save persists the document to path as indented JSON and returns the bytes
// written. Parent directories are created as needed.
func (s *FileService) Save(doc project.Document, path string) (int64, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return 0, &StorageError{
			Code:    ErrCodeWriteFailed,
			Message: fmt.Sprintf("marshal document: %v", err),
			Path:    path,
			Err:     err,
		}
	}
	data := buf.Bytes()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, &StorageError{
			Code:    ErrCodeWriteFailed,
			Message: fmt.Sprintf("create project directory: %v", err),
			Path:    path,
			Err:     err,
		}
	}

	// Temp-then-rename for crash atomicity. The temp file lives next to the
	// target so the rename never crosses filesystems.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return 0, &StorageError{
			Code:    ErrCodeWriteFailed,
			Message: fmt.Sprintf("write temp file: %v", err),
			Path:    path,
			Err:     err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, &StorageError{
			Code:    ErrCodeWriteFailed,
			Message: fmt.Sprintf("rename temp file into place: %v", err),
			Path:    path,
			Err:     err,
		}
	}

	return int64(len(data)), nil
}

// Load reads the document at path, validates it against the embedded
// schema, and parses it. The returned document may carry any schema
// version; the gateway applies version-compatibility rules.
func (s *FileService) Load(path string) (project.Document, error) {
	var doc project.Document

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, &StorageError{
			Code:    ErrCodeReadFailed,
			Message: fmt.Sprintf("read project file: %v", err),
			Path:    path,
			Err:     err,
		}
	}

	if err := ValidateDocument(data); err != nil {
		return doc, err
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, &StorageError{
			Code:    ErrCodeBadJSON,
			Message: fmt.Sprintf("unmarshal document: %v", err),
			Path:    path,
			Err:     err,
		}
	}

	return doc, nil
}

// Username returns the runtime user this service was configured with.
func (s *FileService) Username() string { return s.user }

// AppVersion returns the running tool version.
func (s *FileService) AppVersion() string { return s.version }
