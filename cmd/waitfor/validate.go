package main

import (
	"fmt"

	"github.com/jpalmerr/waitfor/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without waiting on anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a waitfor configuration file without running any checks.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  waitfor validate -c waitfor.yaml
  waitfor validate --config /etc/waitfor/waitfor.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// count conditions by check type
	byType := make(map[string]int)
	for _, cc := range cfg.Conditions {
		byType[cc.Check.Type]++
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Interval:   %s\n", cfg.Interval.Duration())
	fmt.Printf("  Max trials: %d\n", cfg.MaxTrials)
	fmt.Printf("  Conditions: %d (http: %d, file: %d, node: %d)\n",
		len(cfg.Conditions), byType["http"], byType["file"], byType["node"])

	return nil
}
