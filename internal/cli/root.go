// Package cli wires the ffx commands: project creation, inspection of the
// activity log and sessions, integrity verification and the recent-project
// catalog.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// Version is the tool version recorded in saved documents. Overridden at
// build time via -ldflags.
var Version = "0.3.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // config file override, empty for ~/.ffx/config.yaml
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ffx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ffx",
		Short: "ffx - forensic evidence project manager",
		Long: `Manages versioned project documents for evidence review: work
sessions, a bounded activity audit log, bookmarks, notes, tags and
database integrity baselines, persisted as a single .ffxproj artifact.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.ffx/config.yaml)")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRecentCommand(opts))

	return cmd
}
