package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ffxlabs/ffxproj/internal/state"
)

// CreateResult is the payload of a successful create.
type CreateResult struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RootPath     string `json:"root_path"`
	Path         string `json:"path"`
	BytesWritten int64  `json:"bytes_written"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "create <root-dir>",
		Short: "Create a project document for an evidence directory",
		Long: `Create a fresh project document rooted at the given evidence
directory and save it. The document records its creator, opens the first
work session, and starts the activity audit log.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "project file path (default <root>/<base>.ffxproj)")
	return cmd
}

func runCreate(opts *RootOptions, rootDir, outPath string, cmd *cobra.Command) error {
	printer := newPrinter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	e, err := newEnv(opts, printer)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}
	defer e.close()

	rootPath, err := filepath.Abs(rootDir)
	if err != nil {
		return printer.Fail(ExitCommandError, fmt.Errorf("resolve root directory: %w", err))
	}

	if existing, found := e.gateway.CheckProjectExists(cmd.Context(), rootPath); found {
		return printer.Fail(ExitCommandError, fmt.Errorf("project already exists at %s", existing))
	}

	doc, err := e.mgr.CreateProject(rootPath)
	if err != nil {
		return printer.Fail(ExitCommandError, err)
	}
	printer.Verbosef("created document %s for %s", doc.ID, rootPath)

	savePath := outPath
	if savePath == "" {
		savePath = e.gateway.DefaultProjectPath(rootPath)
	}

	res := e.mgr.Save(cmd.Context(), state.SaveOptions{}, savePath)
	if res.Err != nil {
		return printer.Fail(ExitCommandError, res.Err)
	}
	if res.Cancelled {
		return printer.Fail(ExitCommandError, fmt.Errorf("save cancelled"))
	}

	result := CreateResult{
		ID:           doc.ID,
		Name:         doc.Name,
		RootPath:     rootPath,
		Path:         res.Path,
		BytesWritten: res.BytesWritten,
	}
	return printer.Success(result, nil, func(w io.Writer) {
		fmt.Fprintf(w, "Created project %q\n", result.Name)
		fmt.Fprintf(w, "  id:   %s\n", result.ID)
		fmt.Fprintf(w, "  root: %s\n", result.RootPath)
		fmt.Fprintf(w, "  file: %s (%d bytes)\n", result.Path, result.BytesWritten)
	})
}
