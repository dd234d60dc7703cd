package commands

import (
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gobucket/internal/cli"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the features in a definitions file",
	Long: `List every feature in the definitions file with its default value and
rule count.

Examples:
  gobucket list --definitions defs.json
  gobucket list --definitions defs.json --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return cli.PrintFeatures(client.Features(), cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
