package commands

import (
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gobucket/internal/cli"
)

var evalCmd = &cobra.Command{
	Use:   "eval <feature-key>",
	Short: "Evaluate a feature for a user",
	Long: `Evaluate a feature against the definitions file and print the resolved
value and its source.

Examples:
  gobucket eval checkout --definitions defs.json --user user123
  gobucket eval checkout --definitions defs.json --user user123 --attr country=US --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		res := client.Feature(args[0])
		return cli.PrintFeatureResult(args[0], res, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
