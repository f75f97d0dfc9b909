package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ffxlabs/ffxproj/internal/config"
	"github.com/ffxlabs/ffxproj/internal/state"
	"github.com/ffxlabs/ffxproj/internal/storage"
)

// env bundles the collaborators a command needs: loaded config, catalog,
// gateway and state manager, plus the diagnostic log file.
type env struct {
	cfg     *config.Config
	catalog *storage.Catalog
	gateway *storage.Gateway
	mgr     *state.Manager
	logger  *log.Logger
	logFile *os.File
}

// newEnv builds the command environment. The catalog and log file are
// best-effort: a broken ~/.ffx must not keep project files unreachable.
func newEnv(opts *RootOptions, printer *Printer) (*env, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(io.Discard, "", 0)
	var logFile *os.File
	if cfg.LogDir != "" {
		if f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles); err != nil {
			printer.Verbosef("file logging disabled: %v", err)
		} else {
			logFile = f
			logger = log.New(f, "", log.LstdFlags)
		}
	}

	var catalog *storage.Catalog
	if cfg.CatalogPath != "" {
		catalog, err = storage.OpenCatalog(cfg.CatalogPath)
		if err != nil {
			printer.Verbosef("catalog disabled: %v", err)
			logger.Printf("open catalog %s: %v", cfg.CatalogPath, err)
			catalog = nil
		}
	}

	service := storage.NewFileService(cfg.Username, Version)
	prompter := &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
	gateway := storage.NewGateway(service, prompter, catalog, logger)

	mgrOpts := []state.Option{state.WithLogger(logger)}
	if !cfg.AutoSaveEnabled() {
		mgrOpts = append(mgrOpts, state.WithAutosaveDisabled())
	}

	return &env{
		cfg:     cfg,
		catalog: catalog,
		gateway: gateway,
		mgr:     state.NewManager(gateway, mgrOpts...),
		logger:  logger,
		logFile: logFile,
	}, nil
}

func (e *env) close() {
	e.mgr.ClearProject(true)
	if e.catalog != nil {
		e.catalog.Close()
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}
