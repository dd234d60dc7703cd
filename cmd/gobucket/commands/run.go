package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gobucket"
	"github.com/TimurManjosov/gobucket/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <experiment-file>",
	Short: "Run an experiment definition for a user",
	Long: `Run a standalone experiment definition (a JSON file) and print the raw
assignment, bypassing the feature layer.

Examples:
  gobucket run exp.json --user user123
  gobucket run exp.json --user user123 --qa --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read experiment: %w", err)
		}
		var exp gobucket.Experiment
		if err := json.Unmarshal(raw, &exp); err != nil {
			return fmt.Errorf("parse experiment: %w", err)
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		res := client.Run(&exp)
		return cli.PrintExperimentResult(exp.TrackingKey, res, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
