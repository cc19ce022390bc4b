package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/workspace"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workspace.yaml>...",
	Short: "Validate workspace files without importing them",
	Long: `Validate workspace files against the workspace schema without importing them.

Examples:
  respext validate api.yaml
  respext validate api.yaml staging.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	hasErrors := false
	for _, file := range args {
		f, err := workspace.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d requests)\n", file, len(f.Requests))
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
