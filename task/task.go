package task

import "sync"

type taskState uint8

const (
	stateReady taskState = iota
	stateRunning
	stateParked
	stateDone
)

func (s taskState) String() string {
	switch s {
	case stateReady:
		return "Ready"
	case stateRunning:
		return "Running"
	case stateParked:
		return "Parked"
	case stateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Task is one unit of cooperatively-scheduled work: a closure that is polled
// repeatedly by its owning Executor until it reports Ready or Err. Tasks are
// never polled concurrently with themselves and never migrate executors.
type Task struct {
	id   uint64
	exec *Executor
	poll func() Poll[struct{}]

	mu          sync.Mutex
	state       taskState
	pendingWake bool
	result      Poll[struct{}]

	signal *Signal
}

// ID returns the task's executor-scoped identifier, stable for its lifetime.
func (t *Task) ID() uint64 { return t.id }

// Signal returns the task's cancellation signal, for registering cleanup
// callbacks or checking whether cancellation has been requested.
func (t *Task) Signal() *Signal { return t.signal }

// Waker returns a Waker bound to this task. It may be called at any time,
// including before the task has ever been polled, and is safe to call
// concurrently from any goroutine.
func (t *Task) Waker() Waker { return Waker{id: t.id, exec: t.exec} }

// Cancel requests cooperative cancellation: the task's Signal is marked
// aborted and, if parked, the task is re-queued so its next poll observes
// the cancellation. Cancel does not itself stop the poll function — it is
// the poll function's responsibility to check Signal().Aborted() and return
// an Err(ErrCancelled) promptly.
func (t *Task) Cancel(reason error) {
	t.signal.abort(reason)
	t.exec.unpark(t.id)
}

// Done reports whether the task has completed (successfully or with error).
func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateDone
}

func (t *Task) markParked() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == stateRunning {
		t.state = stateParked
	}
}

// Waker is a cheap, copyable handle that re-queues its associated Task for
// polling when Unpark is called. Calling Unpark on a task that is not
// currently parked is recorded so the wake is not lost: a task woken while
// it is still being polled (a synchronous self-wake) is immediately
// re-queued once that poll returns.
type Waker struct {
	id   uint64
	exec *Executor
}

// Unpark re-queues the associated task for polling, if it exists and is not
// already done. Safe to call from any goroutine, any number of times.
func (w Waker) Unpark() {
	if w.exec == nil {
		return
	}
	w.exec.unpark(w.id)
}
