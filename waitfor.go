package waitfor

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultInterval  = 250 * time.Millisecond
	defaultMaxTrials = 50
)

// Condition is a zero-argument predicate whose result drives settlement.
//
// The poller invokes the condition once per trial. A true result resolves
// the run; a false result either schedules the next trial or, once the
// trial budget is exhausted, rejects the run.
//
// Conditions should be cheap and side-effect free. Several built-in
// constructors are provided: [FileCondition], [HTTPCondition],
// [NodeCondition], and the [AllOf]/[AnyOf] composers.
type Condition func() bool

// Observer is a callback registered into one of the four observer
// categories (done, fail, always, progress).
//
// Observers receive the poller instance and the condition result of the
// trial that triggered the dispatch. They are invoked synchronously, in
// registration order, from the poller's timer goroutine.
//
// Observers may safely re-enter the poller: registering further observers,
// restarting the run, or settling it from inside a callback is supported.
//
// # Panic Safety
//
// Observers are called within a panic recovery boundary. If an observer
// panics, the panic is logged with a correlation ID and a full stack trace,
// and dispatch continues with the next observer. A misbehaving observer
// cannot kill the polling loop.
type Observer func(p *Poller, ok bool)

// category identifies one of the four observer sequences.
type category int

const (
	catDone category = iota
	catFail
	catAlways
	catProgress
	categoryCount
)

// Poller repeatedly evaluates a condition on a timer until it either
// becomes true (the run resolves) or a bounded number of trials is
// exhausted (the run rejects).
//
// A Poller is created with [New] and started with [Poller.Start]. Progress
// observers fire on every trial; done or fail observers fire once when the
// run settles, followed by always observers. Registration methods return
// the instance for fluent chaining:
//
//	waitfor.New(cond).
//	    Progress(func(p *waitfor.Poller, ok bool) { ... }).
//	    Done(func(p *waitfor.Poller, ok bool) { ... }).
//	    Fail(func(p *waitfor.Poller, ok bool) { ... }).
//	    Start()
//
// A Poller may be started multiple times; each Start begins a fresh run,
// resetting the trial counter and cancelling any tick still scheduled from
// the previous run.
//
// The API is deliberately permissive: a nil condition means Start never
// schedules anything and the poller stays stalled, and nil observers are
// skipped at dispatch time. Neither is surfaced as an error.
type Poller struct {
	cond      Condition
	interval  time.Duration
	maxTrials int
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	trials    int
	observers [categoryCount][]Observer
	timer     *time.Timer

	// gen is bumped whenever the scheduled tick is cancelled (settlement or
	// restart). A fired tick carrying a stale generation is a no-op; Stop
	// alone cannot unschedule an AfterFunc that has already fired.
	gen uint64
}

// New creates a [Poller] for the given condition.
//
// Defaults: trials are evaluated every 250ms ([WithInterval]) and the run
// rejects after 50 unsuccessful trials ([WithMaxTrials]). Options may also
// seed each observer category with a single initial observer ([WithDone],
// [WithFail], [WithAlways], [WithProgress]).
//
// New never fails: invalid option values are silently ignored and a nil
// condition is accepted (the poller then stays stalled forever). Callers
// wanting loud validation should use the config package instead.
func New(cond Condition, opts ...Option) *Poller {
	cfg := &pollerConfig{
		interval:  defaultInterval,
		maxTrials: defaultMaxTrials,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Poller{
		cond:      cond,
		interval:  cfg.interval,
		maxTrials: cfg.maxTrials,
		logger:    logger,
		state:     StateStalled,
	}

	// at most one seed observer per category from configuration
	seeds := [categoryCount]Observer{
		catDone:     cfg.done,
		catFail:     cfg.fail,
		catAlways:   cfg.always,
		catProgress: cfg.progress,
	}
	for cat, obs := range seeds {
		if obs != nil {
			p.observers[cat] = append(p.observers[cat], obs)
		}
	}

	return p
}

// Start begins a new run: the trial counter is reset to zero and the first
// trial is scheduled one interval from now.
//
// Any tick still scheduled from a previous run is cancelled first, so a
// restarted poller counts trials only for the new run. If the condition is
// nil, Start schedules nothing and the poller remains stalled; this is
// accepted silently.
//
// Returns the instance for fluent chaining.
func (p *Poller) Start() *Poller {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelTickLocked()
	p.trials = 0
	if p.cond == nil {
		return p
	}
	p.scheduleLocked()
	return p
}

// Done appends an observer to the done category. Done observers fire once,
// when a run resolves. Returns the instance for fluent chaining.
func (p *Poller) Done(obs Observer) *Poller { return p.register(catDone, obs) }

// Fail appends an observer to the fail category. Fail observers fire once,
// when a run rejects. Returns the instance for fluent chaining.
func (p *Poller) Fail(obs Observer) *Poller { return p.register(catFail, obs) }

// Always appends an observer to the always category. Always observers fire
// once per run, after the done or fail observers of the same settlement.
// Returns the instance for fluent chaining.
func (p *Poller) Always(obs Observer) *Poller { return p.register(catAlways, obs) }

// Progress appends an observer to the progress category. Progress observers
// fire on every trial, including the trial that settles the run. Returns
// the instance for fluent chaining.
func (p *Poller) Progress(obs Observer) *Poller { return p.register(catProgress, obs) }

// register appends obs to the category's sequence. Sequences are
// append-only; duplicates are allowed and there is no removal. A nil obs is
// stored and skipped at dispatch time.
func (p *Poller) register(cat category, obs Observer) *Poller {
	p.mu.Lock()
	p.observers[cat] = append(p.observers[cat], obs)
	p.mu.Unlock()
	return p
}

// Notify marks the run as pending, dispatches the progress observers with
// the given condition result, and then increments the trial counter.
// Returns the instance.
//
// Notify is called internally once per trial; it is exported so a run can
// be driven manually, mirroring [Poller.Resolve] and [Poller.Reject].
func (p *Poller) Notify(ok bool) *Poller {
	p.mu.Lock()
	p.state = StatePending
	p.mu.Unlock()

	p.dispatch(ok, catProgress)

	p.mu.Lock()
	p.trials++
	p.mu.Unlock()
	return p
}

// Resolve settles the run as successful: the state becomes
// [StateResolved], any scheduled tick is cancelled, and the done observers
// are dispatched followed by the always observers. Returns the instance.
//
// Resolve may be called externally to force settlement; the cancelled tick
// will not fire afterwards.
func (p *Poller) Resolve(ok bool) *Poller {
	p.mu.Lock()
	p.state = StateResolved
	p.cancelTickLocked()
	p.mu.Unlock()

	p.dispatch(ok, catDone, catAlways)
	return p
}

// Reject settles the run as failed: the state becomes [StateRejected], any
// scheduled tick is cancelled, and the fail observers are dispatched
// followed by the always observers. Returns the instance.
func (p *Poller) Reject(ok bool) *Poller {
	p.mu.Lock()
	p.state = StateRejected
	p.cancelTickLocked()
	p.mu.Unlock()

	p.dispatch(ok, catFail, catAlways)
	return p
}

// State returns the current lifecycle state of the poller.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Trials returns the number of trials evaluated in the current run.
// The counter is incremented after each trial's progress dispatch and is
// reset to zero by [Poller.Start].
func (p *Poller) Trials() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trials
}

// Interval returns the time between consecutive trials.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// MaxTrials returns the number of unsuccessful trials after which a run
// rejects.
func (p *Poller) MaxTrials() int {
	return p.maxTrials
}

// scheduleLocked arms the timer for the next trial. Caller holds p.mu.
func (p *Poller) scheduleLocked() {
	gen := p.gen
	p.timer = time.AfterFunc(p.interval, func() { p.tick(gen) })
}

// cancelTickLocked releases the scheduled tick, if any, and invalidates any
// tick that already fired but has not yet observed the generation. Caller
// holds p.mu. Called on every exit path: resolve, reject, restart.
func (p *Poller) cancelTickLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

// tick performs one trial: evaluate the condition, notify progress, then
// settle or schedule the next trial. The truthy check deliberately precedes
// the exhaustion check, so a condition that becomes true on the final
// permitted trial resolves rather than rejects.
func (p *Poller) tick(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	cond := p.cond
	p.mu.Unlock()

	ok := cond()
	p.Notify(ok)

	p.mu.Lock()
	if gen != p.gen {
		// a progress observer settled or restarted the run
		p.mu.Unlock()
		return
	}
	trials, maxTrials := p.trials, p.maxTrials
	p.mu.Unlock()

	switch {
	case ok:
		p.Resolve(ok)
	case trials >= maxTrials:
		p.Reject(ok)
	default:
		p.mu.Lock()
		if gen == p.gen {
			p.scheduleLocked()
		}
		p.mu.Unlock()
	}
}

// dispatch invokes every observer of each category in order, each category
// fully drained before the next begins. The mutex is not held across
// invocations, so observers may synchronously re-enter the poller. The
// sequence is not snapshotted: observers appended to a category while its
// dispatch is in flight are still visited. Nil observers are skipped.
func (p *Poller) dispatch(ok bool, cats ...category) {
	for _, cat := range cats {
		for i := 0; ; i++ {
			p.mu.Lock()
			seq := p.observers[cat]
			if i >= len(seq) {
				p.mu.Unlock()
				break
			}
			obs := seq[i]
			p.mu.Unlock()

			if obs == nil {
				continue
			}
			p.invoke(obs, ok)
		}
	}
}

// invoke calls a single observer with panic recovery.
// If the observer panics, the full stack trace is logged with a correlation
// ID and dispatch continues with the next observer.
func (p *Poller) invoke(obs Observer, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("observer panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	obs(p, ok)
}
