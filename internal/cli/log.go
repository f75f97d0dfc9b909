package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ffxlabs/ffxproj/internal/project"
)

// LogResult is the payload of the log command.
type LogResult struct {
	Total   int                     `json:"total"`
	Shown   int                     `json:"shown"`
	Entries []project.ActivityEntry `json:"entries"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:           "log <project-file>",
		Short:         "Show the activity audit log, newest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, args[0], category, limit, cmd)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (file, hash, search, ...)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	return cmd
}

func runLog(opts *RootOptions, path, category string, limit int, cmd *cobra.Command) error {
	printer := newPrinter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if category != "" && !project.ValidCategories[category] {
		return printer.Fail(ExitCommandError, fmt.Errorf("unknown category %q", category))
	}

	e, err := newEnv(opts, printer)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}
	defer e.close()

	doc, warnings, err := readDocument(e, cmd, path)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}

	entries := doc.ActivityByCategory(category)
	total := len(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []project.ActivityEntry{}
	}

	result := LogResult{Total: total, Shown: len(entries), Entries: entries}
	return printer.Success(result, warnings, func(w io.Writer) {
		if total == 0 {
			fmt.Fprintln(w, "No activity recorded")
			return
		}
		for _, entry := range result.Entries {
			fmt.Fprintf(w, "%s  [%-8s] %s %s: %s\n",
				entry.Timestamp, entry.Category, entry.User, entry.Action, entry.Description)
		}
		if result.Shown < total {
			fmt.Fprintf(w, "(%d of %d entries)\n", result.Shown, total)
		}
	})
}
