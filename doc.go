// Package waitfor provides a small polling-based settlement primitive: a
// [Poller] repeatedly evaluates a condition on a timer, notifying progress
// observers on each trial, resolving when the condition becomes true and
// rejecting after a bounded number of trials.
//
// It is designed as an SDK-first library: conditions are plain functions,
// configuration uses the functional options pattern, and registration is
// fluent so a poller reads as a single expression.
//
// # Quick Start
//
// Wait for a marker file, checking every 250ms, giving up after 50 tries:
//
//	waitfor.New(waitfor.FileCondition("/tmp/ready")).
//	    Done(func(p *waitfor.Poller, ok bool) {
//	        slog.Info("ready", "trials", p.Trials())
//	    }).
//	    Fail(func(p *waitfor.Poller, ok bool) {
//	        slog.Error("gave up", "trials", p.Trials())
//	    }).
//	    Start()
//
// # Observer Categories
//
// Observers are registered into four independent ordered categories:
//
//   - progress: fires on every trial, including the settling one
//   - done: fires once, when a run resolves
//   - fail: fires once, when a run rejects
//   - always: fires once per run, after done or fail
//
// Within one trial, progress dispatch always precedes the terminal done or
// fail dispatch, and always follows its paired done or fail. Each category
// preserves registration order and is append-only; duplicates are allowed.
//
// # Conditions
//
// Any func() bool works as a [Condition]. Built-ins cover common waits:
// [FileCondition], [HTTPCondition] (and [HTTPProbe] for fine control),
// [NodeCondition], and the [AllOf]/[AnyOf] composers.
//
// # Node Presence
//
// [NodePoller] specializes the poller to "an element matching this selector
// is present". The document query capability is injected as a [NodeQuery];
// [DocumentQuery] implements it with CSS selector matching over HTML
// documents supplied by a [DocumentSource] ([FileSource], [URLSource]).
//
// # Permissiveness
//
// The core deliberately never returns errors: a nil condition means Start
// schedules nothing, nil observers are skipped at dispatch, and invalid
// option values keep the defaults. Rejection is not an error either; it is
// a first-class terminal state delivered through the fail and always
// categories. The config package layers loud validation on top for the CLI.
//
// # Architecture
//
//   - root package: the Poller state machine, conditions, node querying
//   - internal/probe: pooled HTTP probing behind the http condition
//   - config: YAML configuration for the standalone binary
//   - cmd/waitfor: the CLI (wait, validate, version)
//
// The internal packages are not part of the public API and may change
// without notice.
package waitfor
