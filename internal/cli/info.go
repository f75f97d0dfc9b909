package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ffxlabs/ffxproj/internal/project"
)

// InfoResult summarizes one project document.
type InfoResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Version       int    `json:"version"`
	RootPath      string `json:"root_path"`
	CreatedBy     string `json:"created_by"`
	CreatedAt     string `json:"created_at"`
	SavedAt       string `json:"saved_at,omitempty"`
	LastSavedBy   string `json:"last_saved_by,omitempty"`
	Users         int    `json:"users"`
	Sessions      int    `json:"sessions"`
	OpenSessions  int    `json:"open_sessions"`
	ActivityCount int    `json:"activity_count"`
	Bookmarks     int    `json:"bookmarks"`
	Notes         int    `json:"notes"`
	Tags          int    `json:"tags"`
	TrackedFiles  int    `json:"tracked_files"`
	Databases     int    `json:"databases"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <project-file>",
		Short: "Summarize a project document",
		Long: `Read a project document and print its identity, save metadata
and per-collection counts. The file is not modified.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInfo(opts *RootOptions, path string, cmd *cobra.Command) error {
	printer := newPrinter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := newEnv(opts, printer)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}
	defer e.close()

	doc, warnings, err := readDocument(e, cmd, path)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}

	result := InfoResult{
		ID:            doc.ID,
		Name:          doc.Name,
		Version:       doc.Version,
		RootPath:      doc.RootPath,
		CreatedBy:     doc.CreatedBy,
		CreatedAt:     doc.CreatedAt,
		SavedAt:       doc.SavedAt,
		LastSavedBy:   doc.LastSavedBy,
		Users:         len(doc.Users),
		Sessions:      len(doc.Sessions),
		OpenSessions:  doc.OpenSessionCount(),
		ActivityCount: len(doc.ActivityLog),
		Bookmarks:     len(doc.Bookmarks),
		Notes:         len(doc.Notes),
		Tags:          len(doc.Tags),
		TrackedFiles:  len(doc.HashHistory),
		Databases:     len(doc.ProcessedDatabases.Databases),
	}

	return printer.Success(result, warnings, func(w io.Writer) {
		fmt.Fprintf(w, "%s (v%d)\n", result.Name, result.Version)
		fmt.Fprintf(w, "  id:         %s\n", result.ID)
		fmt.Fprintf(w, "  root:       %s\n", result.RootPath)
		fmt.Fprintf(w, "  created:    %s by %s\n", result.CreatedAt, result.CreatedBy)
		if result.SavedAt != "" {
			fmt.Fprintf(w, "  last saved: %s by %s\n", result.SavedAt, result.LastSavedBy)
		}
		fmt.Fprintf(w, "  sessions:   %d (%d open)\n", result.Sessions, result.OpenSessions)
		fmt.Fprintf(w, "  activity:   %d entries\n", result.ActivityCount)
		fmt.Fprintf(w, "  bookmarks:  %d  notes: %d  tags: %d\n", result.Bookmarks, result.Notes, result.Tags)
		fmt.Fprintf(w, "  hashes:     %d files tracked\n", result.TrackedFiles)
		fmt.Fprintf(w, "  databases:  %d processed\n", result.Databases)
	})
}

// readDocument loads a document through the gateway without installing it
// in the state manager: inspection commands must not mutate anything.
func readDocument(e *env, cmd *cobra.Command, path string) (project.Document, []string, error) {
	res := e.gateway.Load(cmd.Context(), path, time.Now())
	if res.Err != nil {
		return project.Document{}, nil, res.Err
	}
	return *res.Project, res.Warnings, nil
}
