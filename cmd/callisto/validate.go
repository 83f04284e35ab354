package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sentinel-hq/callisto/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting the server.

Exits non-zero with a description of the first problem found.

Examples:
  callisto validate --config config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
		fmt.Printf("  listen address:    %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  provider:          %s\n", cfg.Provider.Type)
		fmt.Printf("  dampen threshold:  %.2f\n", cfg.Pipeline.DampenThreshold)
		fmt.Printf("  project threshold: %.2f\n", cfg.Pipeline.ProjectThreshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
