package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/extract"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the extraction functions available in templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		names := a.registry.Names()
		defs := make([]extract.Definition, 0, len(names))
		for _, name := range names {
			def, _ := a.registry.Lookup(name)
			defs = append(defs, def)
		}
		a.formatter.FormatFunctions(defs)
		return nil
	},
}
