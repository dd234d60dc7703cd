package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gobucket"
	"github.com/TimurManjosov/gobucket/internal/condition"
)

var (
	// Global flags
	definitionsPath string
	userID          string
	attrs           []string
	pageURL         string
	qaMode          bool
	format          string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gobucket",
	Short: "CLI for evaluating gobucket feature flags and experiments",
	Long: `gobucket evaluates features and experiments against a local definitions
file, using the exact bucketing the SDK applies at runtime. Useful for
answering "what would user X see?" without deploying anything.

Examples:
  gobucket list --definitions defs.json
  gobucket eval checkout --definitions defs.json --user user123
  gobucket eval checkout --definitions defs.json --user user123 --attr plan=premium
  gobucket run exp.json --user user123 --format json`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&definitionsPath, "definitions", "", "Path to a definitions JSON file")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID (the \"id\" attribute)")
	rootCmd.PersistentFlags().StringArrayVar(&attrs, "attr", nil, "User attribute as key=value (repeatable)")
	rootCmd.PersistentFlags().StringVar(&pageURL, "url", "", "Page URL whose query string may force variations")
	rootCmd.PersistentFlags().BoolVar(&qaMode, "qa", false, "QA mode: bucket but suppress tracking")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
}

// newClient builds a client from the global flags and the definitions file.
func newClient() (*gobucket.Client, error) {
	attributes := map[string]any{}
	for _, pair := range attrs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid attribute %q, expected key=value", pair)
		}
		attributes[key] = value
	}
	if userID != "" {
		attributes["id"] = userID
	}

	opts := []gobucket.Option{
		gobucket.WithAttributes(attributes),
		gobucket.WithConditionEvaluator(condition.New()),
		gobucket.WithQAMode(qaMode),
	}
	if pageURL != "" {
		opts = append(opts, gobucket.WithURL(pageURL))
	}

	client := gobucket.New(opts...)

	if definitionsPath != "" {
		data, err := os.ReadFile(definitionsPath)
		if err != nil {
			return nil, fmt.Errorf("read definitions: %w", err)
		}
		if err := client.OnFetched(data, false); err != nil {
			return nil, err
		}
	}
	return client, nil
}
