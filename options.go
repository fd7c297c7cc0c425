package waitfor

import (
	"log/slog"
	"time"
)

// pollerConfig holds mutable state during Poller construction.
type pollerConfig struct {
	interval  time.Duration
	maxTrials int
	logger    *slog.Logger

	// seed observers, at most one per category
	done     Observer
	fail     Observer
	always   Observer
	progress Observer
}

// Option configures a [Poller] during construction.
//
// Option implements the functional options pattern. Unlike most option
// APIs, options here never fail: the poller's contract is permissive, so
// out-of-range values are silently ignored and the default is kept. Loud
// validation belongs to the config package.
//
// Built-in options: [WithInterval], [WithMaxTrials], [WithLogger],
// [WithDone], [WithFail], [WithAlways], [WithProgress].
type Option func(*pollerConfig)

// WithInterval sets the time between consecutive trials.
// Defaults to 250ms. Non-positive durations are ignored.
//
// Example:
//
//	p := waitfor.New(cond, waitfor.WithInterval(time.Second))
func WithInterval(d time.Duration) Option {
	return func(cfg *pollerConfig) {
		if d > 0 {
			cfg.interval = d
		}
	}
}

// WithMaxTrials sets the number of unsuccessful trials after which a run
// rejects. Defaults to 50. Non-positive values are ignored.
//
// A condition that becomes true exactly on the final permitted trial still
// resolves; the trial budget only bounds unsuccessful evaluation.
func WithMaxTrials(n int) Option {
	return func(cfg *pollerConfig) {
		if n > 0 {
			cfg.maxTrials = n
		}
	}
}

// WithLogger sets a custom [slog.Logger] for the poller. The logger is only
// used to report recovered observer panics. If not specified (or nil),
// [slog.Default] is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *pollerConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithDone seeds the done category with a single initial observer,
// equivalent to calling [Poller.Done] immediately after [New]. At most one
// seed per category is kept; a later WithDone replaces an earlier one.
// Further observers can always be appended via [Poller.Done].
func WithDone(obs Observer) Option {
	return func(cfg *pollerConfig) { cfg.done = obs }
}

// WithFail seeds the fail category with a single initial observer.
// See [WithDone] for seed semantics.
func WithFail(obs Observer) Option {
	return func(cfg *pollerConfig) { cfg.fail = obs }
}

// WithAlways seeds the always category with a single initial observer.
// See [WithDone] for seed semantics.
func WithAlways(obs Observer) Option {
	return func(cfg *pollerConfig) { cfg.always = obs }
}

// WithProgress seeds the progress category with a single initial observer.
// See [WithDone] for seed semantics.
func WithProgress(obs Observer) Option {
	return func(cfg *pollerConfig) { cfg.progress = obs }
}
