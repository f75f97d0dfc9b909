// Package config loads host-level tool configuration from ~/.ffx. Nothing
// here lives inside project documents; per-project preferences travel in
// the document's own settings block.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds tool configuration from ~/.ffx/config.yaml. Environment
// variables override file values: FFX_CATALOG_PATH, FFX_LOG_DIR,
// FFX_LOG_MAX_FILES, FFX_AUTOSAVE, FFX_USERNAME.
type Config struct {
	// CatalogPath locates the SQLite catalog of known projects.
	CatalogPath string `yaml:"catalog_path,omitempty"`

	// LogDir receives timestamped diagnostic log files.
	LogDir string `yaml:"log_dir,omitempty"`

	// LogMaxFiles bounds how many log files are kept.
	LogMaxFiles int `yaml:"log_max_files,omitempty"`

	// AutoSave is the host-level master switch. Off here beats on in any
	// document's settings.
	AutoSave *bool `yaml:"auto_save,omitempty"`

	// Username overrides the OS account name recorded in documents.
	Username string `yaml:"username,omitempty"`
}

// AutoSaveEnabled resolves the master switch, defaulting to on.
func (c *Config) AutoSaveEnabled() bool {
	if c.AutoSave == nil {
		return true
	}
	return *c.AutoSave
}

// DefaultDir returns the tool's configuration directory, ~/.ffx.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ffx"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from path. A missing file is not an error: the
// zero config plus environment overrides is returned. An unreadable or
// malformed file is an error; silently ignoring a broken config hides
// misconfiguration until it matters.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FFX_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("FFX_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("FFX_LOG_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LogMaxFiles = n
		}
	}
	if v := os.Getenv("FFX_AUTOSAVE"); v != "" {
		enabled := v == "1" || v == "true"
		cfg.AutoSave = &enabled
	}
	if v := os.Getenv("FFX_USERNAME"); v != "" {
		cfg.Username = v
	}
}

func applyDefaults(cfg *Config) {
	dir, err := DefaultDir()
	if err != nil {
		// Without a home directory the zero values stand; the catalog and
		// file logging simply stay disabled.
		return
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = filepath.Join(dir, "catalog.db")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(dir, "logs")
	}
	if cfg.LogMaxFiles <= 0 {
		cfg.LogMaxFiles = 10
	}
}
