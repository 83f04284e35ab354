package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - risk-governed generation gateway",
	Long: `Callisto is a risk-governed generation gateway.

Each request is evaluated by three gates before generation:
  - Evidence gate: scores evidence sufficiency against the request
  - Risk governor: maps risk energy to FREE, DAMPEN, or PROJECT
  - Action gate: plans the requested actions and blocks risky ones

Answers come from a pluggable provider; requests that cannot be
safely answered are projected into a clarification or refusal instead
of being silently dropped.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
