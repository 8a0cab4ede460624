package task

import (
	"context"
	"sync"
	"time"

	"github.com/corvid-labs/goflow/reactor"
)

// State is the coarse running state of an Executor, mirroring the
// Awake/Running/Sleeping/Terminating/Terminated lifecycle the predecessor
// runtime used (values kept in the same relative order for the same reason:
// readability of state transition diagrams, not wire compatibility — there
// is no wire format here).
type State uint32

const (
	StateAwake State = iota
	StateRunning
	StateSleeping
	StateTerminating
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Logger is the minimal structured-logging sink an Executor reports to. The
// logging package provides a logiface/zerolog-backed implementation; a nil
// Logger is a valid, silent default.
type Logger interface {
	Log(category string, msg string, fields map[string]any)
}

// MetricsRecorder is the minimal instrumentation sink an Executor reports
// to, kept decoupled from any specific metrics library so this package does
// not need to import prometheus — the metrics package provides an adapter
// satisfying this interface over real Prometheus collectors.
type MetricsRecorder interface {
	TasksLive(n int)
	TimersPending(n int)
	TickLatency(seconds float64)
}

// Executor is a single-threaded, cooperative task scheduler: exactly one
// goroutine (the one that calls Run) ever polls tasks or fires timers. Other
// goroutines may call Spawn, ScheduleTimer, or a Waker's Unpark concurrently;
// those operations only ever enqueue work for the Run goroutine to process.
type Executor struct {
	react *reactor.Reactor
	log   Logger
	rec   MetricsRecorder
	clock func() time.Time

	mu      sync.Mutex
	state   State
	nextID  uint64
	ready   []*Task
	tasks   map[uint64]*Task
	timers  timerHeap
	timerSeq uint64
	reg     *diagnosticRegistry
	closed  bool
	sleeping bool
}

// Option configures an Executor at construction time.
type Option interface{ apply(*Executor) }

type optionFunc func(*Executor)

func (f optionFunc) apply(e *Executor) { f(e) }

// WithReactor attaches a reactor.Reactor so tasks can park on file
// descriptor readiness. An executor with no reactor can still run pure
// CPU/timer/channel-driven tasks.
func WithReactor(r *reactor.Reactor) Option {
	return optionFunc(func(e *Executor) { e.react = r })
}

// WithLogger attaches a structured logging sink.
func WithLogger(l Logger) Option {
	return optionFunc(func(e *Executor) { e.log = l })
}

// WithMetrics attaches an instrumentation sink.
func WithMetrics(r MetricsRecorder) Option {
	return optionFunc(func(e *Executor) { e.rec = r })
}

// withClock overrides the time source, for deterministic timer tests.
func withClock(f func() time.Time) Option {
	return optionFunc(func(e *Executor) { e.clock = f })
}

// NewExecutor constructs an Executor. It does not start running until Run is
// called.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		tasks: make(map[uint64]*Task),
		reg:   newDiagnosticRegistry(),
	}
	for _, o := range opts {
		o.apply(e)
	}
	return e
}

// Reactor returns the reactor this executor was constructed with, or nil.
func (e *Executor) Reactor() *reactor.Reactor { return e.react }

// State returns the executor's current coarse state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Spawn registers a new task whose poll function is called repeatedly until
// it returns Ready or Err. It is safe to call from any goroutine.
func (e *Executor) Spawn(poll func() Poll[struct{}]) (*Task, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrExecutorClosed
	}
	e.nextID++
	t := &Task{
		id:     e.nextID,
		exec:   e,
		poll:   poll,
		state:  stateReady,
		signal: newSignal(),
	}
	e.tasks[t.id] = t
	e.reg.track(t)
	e.ready = append(e.ready, t)
	wake := e.sleeping
	e.mu.Unlock()

	if wake && e.react != nil {
		_ = e.react.Wake()
	}
	return t, nil
}

// unpark re-queues the task identified by id, if it still exists. If the
// task is currently Running (being polled right now, on the executor
// goroutine, necessarily the same goroutine calling unpark in that case),
// the wake is deferred until that poll returns, so it is never lost.
func (e *Executor) unpark(id uint64) {
	e.mu.Lock()
	t, ok := e.tasks[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	requeue := false
	t.mu.Lock()
	switch t.state {
	case stateParked:
		t.state = stateReady
		requeue = true
	case stateRunning:
		t.pendingWake = true
	}
	t.mu.Unlock()
	if requeue {
		e.ready = append(e.ready, t)
	}
	wake := e.sleeping && requeue
	e.mu.Unlock()

	if wake && e.react != nil {
		_ = e.react.Wake()
	}
}

func (e *Executor) drainReady() []*Task {
	e.mu.Lock()
	batch := e.ready
	e.ready = nil
	e.mu.Unlock()
	return batch
}

func (e *Executor) pollOne(t *Task) {
	t.mu.Lock()
	t.state = stateRunning
	t.pendingWake = false
	t.mu.Unlock()

	setCurrent(t)
	res := t.poll()
	clearCurrent()

	t.mu.Lock()
	switch {
	case res.IsNotReady():
		if t.pendingWake {
			t.state = stateReady
			t.pendingWake = false
			t.mu.Unlock()
			e.mu.Lock()
			e.ready = append(e.ready, t)
			e.mu.Unlock()
			return
		}
		t.state = stateParked
		t.mu.Unlock()
	default:
		t.state = stateDone
		t.result = res
		t.mu.Unlock()
		e.mu.Lock()
		delete(e.tasks, t.id)
		e.mu.Unlock()
	}
}

// isIdle reports whether the ready queue is empty; pending timers are not
// consulted here. Caller must not hold e.mu.
func (e *Executor) isIdle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.ready) == 0
}

func (e *Executor) hasOutstandingWork() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks) > 0 || e.timers.Len() > 0
}

// pollIdleCap bounds how long Run blocks in the reactor between checks of
// ctx.Done when there is no nearer timer deadline, so Shutdown/ctx
// cancellation is never starved by an indefinite reactor wait.
const pollIdleCap = 250 * time.Millisecond

// Run drives the executor's scheduling loop until ctx is cancelled or there
// is no more outstanding work (no live tasks and no pending timers). It must
// be called from the goroutine that should be considered "the executor's
// goroutine" — that goroutine's identity becomes the scope for Current/Park
// for as long as Run is executing.
func (e *Executor) Run(ctx context.Context) error {
	e.mu.Lock()
	e.state = StateRunning
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.state = StateTerminated
		e.closed = true
		e.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			e.rejectAll(err)
			return err
		}

		tickStart := time.Now()
		batch := e.drainReady()
		for _, t := range batch {
			e.pollOne(t)
		}
		e.runDueTimers()
		e.reg.scavenge(64)

		if e.rec != nil && len(batch) > 0 {
			e.rec.TickLatency(time.Since(tickStart).Seconds())
			e.mu.Lock()
			live := e.reg.liveCount()
			pending := e.timers.Len()
			e.mu.Unlock()
			e.rec.TasksLive(live)
			e.rec.TimersPending(pending)
		}

		if !e.isIdle() {
			continue
		}
		if !e.hasOutstandingWork() {
			return nil
		}

		timeout := e.nextTimeout()
		if timeout < 0 || timeout > pollIdleCap {
			timeout = pollIdleCap
		}

		if e.react == nil {
			select {
			case <-ctx.Done():
				continue
			case <-time.After(timeout):
				continue
			}
		}

		e.mu.Lock()
		e.state = StateSleeping
		e.sleeping = true
		e.mu.Unlock()

		_, err := e.react.Run(int(timeout / time.Millisecond))

		e.mu.Lock()
		e.sleeping = false
		e.state = StateRunning
		e.mu.Unlock()

		if err != nil {
			return err
		}
	}
}

// Shutdown aborts the Signal of every live task and closes the executor to
// further Spawn/ScheduleTimer calls. It returns at once without waiting for
// Run, does not stop Run, and does not re-queue parked tasks: a task sees
// the abort on its next poll, and only fails if its poll function checks
// Signal(). Callers that want Run to return cancel the context passed to it.
func (e *Executor) Shutdown(reason error) {
	e.rejectAll(reason)
}

func (e *Executor) rejectAll(reason error) {
	e.mu.Lock()
	tasks := make([]*Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		tasks = append(tasks, t)
	}
	e.closed = true
	e.mu.Unlock()

	for _, t := range tasks {
		t.signal.abort(reason)
	}
}

// LiveTasks returns the approximate number of tasks that are neither
// collected nor Done. Intended for metrics/diagnostics, not control flow.
func (e *Executor) LiveTasks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.liveCount()
}
