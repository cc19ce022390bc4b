package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/stats"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Inspect stored responses",
}

var responsesListCmd = &cobra.Command{
	Use:   "list <requestId>",
	Short: "List the stored responses of a request, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		responses, err := a.store.FindResponses(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a.formatter.FormatResponses(args[0], responses)
		return nil
	},
}

var responsesStatsCmd = &cobra.Command{
	Use:   "stats <requestId>",
	Short: "Summarize status codes and latency of the stored responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		responses, err := a.store.FindResponses(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a.formatter.FormatStats(args[0], stats.Summarize(responses))
		return nil
	},
}

var responsesClearCmd = &cobra.Command{
	Use:   "clear <requestId>",
	Short: "Delete the stored responses of a request and their body files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.host.ClearResponses(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %d responses of %s\n", n, args[0])
		return nil
	},
}

func init() {
	responsesCmd.AddCommand(responsesListCmd)
	responsesCmd.AddCommand(responsesStatsCmd)
	responsesCmd.AddCommand(responsesClearCmd)
}
