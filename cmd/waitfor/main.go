// Package main is the entry point for the waitfor CLI.
//
// waitfor can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	waitfor wait -c waitfor.yaml     # Block until all conditions are met
//	waitfor validate -c waitfor.yaml # Validate configuration
//	waitfor version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "waitfor",
	Short: "Block until conditions become true",
	Long: `waitfor polls conditions at a configurable interval and blocks until
every condition becomes true, or gives up after a bounded number of trials.

Typical use is gating a deploy step or an integration test run on some
external readiness: a health endpoint answering, a marker file appearing,
or a page rendering an element.

Quick start:
  1. Create a config file (waitfor.yaml)
  2. Run: waitfor wait -c waitfor.yaml
  3. Exit code 0 means every condition was met

Example config:
  interval: 500ms
  max_trials: 40
  conditions:
    - name: api ready
      check: http://localhost:8080/healthz
    - name: deploy marker
      check: file:/tmp/ready`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this waitfor binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("waitfor %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
