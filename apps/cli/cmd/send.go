package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/selector"
)

var sendCmd = &cobra.Command{
	Use:   "send <requestId>",
	Short: "Send a stored request and store its response",
	Long: `Send a stored request, write its body file and store the response.
OAuth2 requests obtain or refresh their token first.

Examples:
  respext send req_login
  respext send req_login -o json`,
	Args: cobra.ExactArgs(1),
	RunE: sendCommand,
}

func sendCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.sender.Send(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, selector.ErrRequestNotFound) {
			return withExitCode(ExitUsageError, err)
		}
		return withExitCode(ExitNetworkError, err)
	}

	a.formatter.FormatResponse(resp)
	return nil
}
