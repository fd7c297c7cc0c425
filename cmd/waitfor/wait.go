package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/waitfor"
	"github.com/jpalmerr/waitfor/config"
	"github.com/spf13/cobra"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// waitCmd blocks until every configured condition settles.
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until all conditions are met",
	Long: `Block until every condition in the config file becomes true.

Each condition is polled independently at its configured interval. The
command returns once every condition has settled:

Exit codes:
  0 - All conditions resolved (became true within their trial budget)
  1 - At least one condition rejected, or the wait was interrupted

Example:
  waitfor wait -c waitfor.yaml
  waitfor wait --config /etc/waitfor/waitfor.yaml`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = waitCmd.MarkFlagRequired("config")
}

// settlement carries one poller's terminal outcome to the waiting loop.
type settlement struct {
	name   string
	state  waitfor.State
	trials int
}

func runWait(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"conditions", len(cfg.Conditions),
		"interval", cfg.Interval.Duration().String(),
		"max_trials", cfg.MaxTrials,
	)

	pollers, err := config.BuildPollers(cfg, waitfor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build pollers: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// buffered so a late settlement never blocks an abandoned run
	settled := make(chan settlement, len(pollers))

	for _, np := range pollers {
		name := np.Name
		np.Poller.
			Progress(func(p *waitfor.Poller, ok bool) {
				logger.Debug("trial", "condition", name, "trial", p.Trials()+1, "ok", ok)
			}).
			Always(func(p *waitfor.Poller, ok bool) {
				settled <- settlement{name: name, state: p.State(), trials: p.Trials()}
			}).
			Start()
	}

	rejected := 0
	for remaining := len(pollers); remaining > 0; remaining-- {
		select {
		case s := <-settled:
			if s.state == waitfor.StateResolved {
				logger.Info("condition met", "condition", s.name, "trials", s.trials)
			} else {
				rejected++
				logger.Warn("condition not met", "condition", s.name, "trials", s.trials)
			}

		case <-ctx.Done():
			return fmt.Errorf("interrupted with %d condition(s) still pending", remaining)
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d condition(s) were not met", rejected, len(pollers))
	}

	logger.Info("all conditions met", "conditions", len(pollers))
	return nil
}
