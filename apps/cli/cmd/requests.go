package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/workspace"
)

var (
	importWatchFlag bool
	importCurlFlag  bool
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Manage stored requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		requests, err := a.store.ListRequests(cmd.Context())
		if err != nil {
			return err
		}
		a.formatter.FormatRequests(requests)
		return nil
	},
}

var requestsImportCmd = &cobra.Command{
	Use:   "import <workspace.yaml>",
	Short: "Import requests and recorded responses from a workspace file",
	Long: `Import requests, and any recorded responses, from a YAML workspace file.
The file is validated against the workspace schema first. Importing the same
file again updates the requests instead of duplicating them. With --curl the
file holds curl commands instead, one per line.

Examples:
  respext requests import api.yaml
  respext requests import api.yaml --watch
  respext requests import --curl commands.sh`,
	Args: cobra.ExactArgs(1),
	RunE: importCommand,
}

func init() {
	requestsImportCmd.Flags().BoolVar(&importCurlFlag, "curl", false, "Read curl commands instead of a workspace file")
	requestsImportCmd.Flags().BoolVarP(&importWatchFlag, "watch", "w", false, "Watch the file and re-import on change")
	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsImportCmd)
}

func importCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	path := args[0]
	importOnce := func(ctx context.Context) error {
		f, err := loadWorkspace(path)
		if err != nil {
			var verr *workspace.ValidationError
			if errors.As(err, &verr) {
				return withExitCode(ExitParseError, err)
			}
			return err
		}
		result, err := workspace.Import(ctx, f, a.store, a.cfg.BodyDir)
		if err != nil {
			return err
		}
		a.formatter.FormatImport(path, result.Requests, result.Responses)
		return nil
	}

	if err := importOnce(cmd.Context()); err != nil {
		if !importWatchFlag {
			return err
		}
		a.formatter.FormatError(err)
	}

	if !importWatchFlag {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s for changes... (press Ctrl+C to stop)\n", path)
	return workspace.Watch(ctx, path, workspace.DefaultDebounce, a.logger, func() {
		if err := importOnce(ctx); err != nil {
			a.formatter.FormatError(err)
		}
	})
}

func loadWorkspace(path string) (*workspace.File, error) {
	if !importCurlFlag {
		return workspace.Load(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := workspace.FromCurl(file, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, withExitCode(ExitParseError, err)
	}
	return f, nil
}
