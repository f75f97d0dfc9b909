package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ffxlabs/ffxproj/internal/storage"
)

// RecentResult is the payload of the recent command.
type RecentResult struct {
	Projects []storage.CatalogEntry `json:"projects"`
}

// NewRecentCommand creates the recent command.
func NewRecentCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "recent",
		Short:         "List recently used projects from the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent(rootOpts, limit, cmd)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum projects to list")
	return cmd
}

func runRecent(opts *RootOptions, limit int, cmd *cobra.Command) error {
	printer := newPrinter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := newEnv(opts, printer)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}
	defer e.close()

	projects, err := e.gateway.Recent(cmd.Context(), limit)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}
	if projects == nil {
		projects = []storage.CatalogEntry{}
	}

	result := RecentResult{Projects: projects}
	return printer.Success(result, nil, func(w io.Writer) {
		if len(result.Projects) == 0 {
			fmt.Fprintln(w, "No projects in the catalog")
			return
		}
		for _, p := range result.Projects {
			fmt.Fprintf(w, "%-20s %s\n", p.Name, p.ProjectPath)
			fmt.Fprintf(w, "%20s opened %dx, last %s\n", "", p.OpenedCount, p.LastOpenedAt)
		}
	})
}
