package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/martinemde/polyglot/modelwire"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List catalog models",
	Long:  "List the models the catalog knows, with the protocol each one speaks and a capability summary.",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, entry := range cat.Models() {
		fmt.Fprintf(out, "%-20s %-18s %s\n", entry.Model, entry.Protocol, capsSummary(entry.Capabilities))
	}
	return nil
}

func capsSummary(caps modelwire.Capabilities) string {
	var parts []string
	switch caps.Temperature {
	case modelwire.TemperatureFixedOne:
		parts = append(parts, "temp=1")
	case modelwire.TemperatureRestricted:
		parts = append(parts, "temp<=1")
	}
	if caps.ReasoningEffort {
		parts = append(parts, "reasoning")
	}
	if caps.Verbosity {
		parts = append(parts, "verbosity")
	}
	if caps.FreeformTools {
		parts = append(parts, "freeform-tools")
	}
	if caps.StatefulContinuation {
		parts = append(parts, "stateful")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
