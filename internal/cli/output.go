// Package cli provides output formatting for gobucket CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/gobucket"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintFeatureResult outputs a single evaluation result.
func PrintFeatureResult(id string, res gobucket.FeatureResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(res)
	case FormatYAML:
		return printYAML(res)
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Feature", "Value", "Source")
		table.Append(id, formatValue(res.Value), string(res.Source))
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintExperimentResult outputs a raw experiment assignment.
func PrintExperimentResult(key string, res gobucket.ExperimentResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(res)
	case FormatYAML:
		return printYAML(res)
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Experiment", "In Experiment", "Variation", "Value")
		table.Append(key, fmt.Sprintf("%t", res.InExperiment),
			fmt.Sprintf("%d", res.VariationID), formatValue(res.Value))
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintFeatures outputs the feature set as a listing.
func PrintFeatures(features gobucket.FeatureSet, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string]gobucket.FeatureSet{"features": features})
	case FormatYAML:
		return printYAML(map[string]gobucket.FeatureSet{"features": features})
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Key", "Default Value", "Rules")

		keys := make([]string, 0, len(features))
		for key := range features {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			f := features[key]
			table.Append(key, formatValue(f.DefaultValue), fmt.Sprintf("%d", len(f.Rules)))
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

func printJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}
