package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ffxlabs/ffxproj/internal/project"
)

// SessionsResult is the payload of the sessions command.
type SessionsResult struct {
	Sessions []project.Session `json:"sessions"`
	Open     int               `json:"open"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sessions <project-file>",
		Short:         "List recorded work sessions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSessions(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	sessions := doc.Sessions
	if sessions == nil {
		sessions = []project.Session{}
	}

	result := SessionsResult{Sessions: sessions, Open: doc.OpenSessionCount()}
	return printer.Success(result, warnings, func(w io.Writer) {
		if len(result.Sessions) == 0 {
			fmt.Fprintln(w, "No sessions recorded")
			return
		}
		for _, s := range result.Sessions {
			state := fmt.Sprintf("ended %s (%ds)", s.EndedAt, s.DurationSeconds)
			if s.Open() {
				state = "open"
			}
			fmt.Fprintf(w, "%s  %s @ %s  started %s  %s\n",
				s.ID, s.User, s.Hostname, s.StartedAt, state)
		}
	})
}
