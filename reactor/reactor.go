// Package reactor implements the L0 layer: a single-threaded, polling-based
// readiness notifier over file descriptors. It owns no task scheduling logic
// of its own — callers supply a Waker to wake per (fd, interest) watcher, and
// the reactor's only job is to fire that Waker exactly once when the kernel
// reports the descriptor ready.
package reactor

import (
	"errors"
	"fmt"
	"sync"
)

// Waker is the minimal interface a scheduler's handle must satisfy to be
// parked on a Watcher. Unpark must be safe to call from the reactor's Run
// goroutine and must not block.
type Waker interface {
	Unpark()
}

// Events is a bitmask of readiness conditions.
type Events uint32

const (
	Read Events = 1 << iota
	Write
	Error
	Hangup
)

func (e Events) String() string {
	var parts []string
	if e&Read != 0 {
		parts = append(parts, "read")
	}
	if e&Write != 0 {
		parts = append(parts, "write")
	}
	if e&Error != 0 {
		parts = append(parts, "error")
	}
	if e&Hangup != 0 {
		parts = append(parts, "hangup")
	}
	if len(parts) == 0 {
		return "none"
	}
	s := parts[0]
	for _, p := range parts[1:] {
		s += "|" + p
	}
	return s
}

var (
	// ErrWatcherExists is returned by AddWatcher when a watcher is already
	// registered for the given (fd, interest) pair — at most one watcher per
	// (fd, interest) may be outstanding at a time.
	ErrWatcherExists = errors.New("reactor: watcher already registered for fd and interest")
	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("reactor: closed")
)

// slot holds at most one outstanding read watcher and one outstanding write
// watcher for a single fd — mirroring the one-shot, one-per-direction
// registration the original DescriptorIo performs against its reactor.
type slot struct {
	read, write Waker
}

// Backend is the OS-specific readiness multiplexer. Reactor drives it;
// platform files (backend_linux.go, ...) supply the concrete implementation.
type Backend interface {
	Init() error
	Close() error
	Add(fd int, interest Events) error
	Modify(fd int, interest Events) error
	Remove(fd int) error
	// Wait blocks up to timeoutMs (or indefinitely if negative) and appends
	// ready (fd, events) pairs into dst, returning the extended slice.
	Wait(timeoutMs int, dst []ReadyFD) ([]ReadyFD, error)
}

// ReadyFD is one readiness notification returned by a Backend.Wait call.
type ReadyFD struct {
	FD     int
	Events Events
}

// Reactor multiplexes readiness across many one-shot Watchers, dispatching
// by calling Waker.Unpark on the task parked for that (fd, interest).
type Reactor struct {
	backend Backend

	mu     sync.Mutex
	slots  map[int]*slot
	closed bool

	wakeFD    int
	wakeWrite func() error
	wakeClose func() error

	scratch []ReadyFD
}

// New constructs a Reactor over the given backend, plus the self-pipe/eventfd
// primitive used to break Run out of a blocking wait when woken from another
// goroutine (see Wake).
func New(backend Backend) (*Reactor, error) {
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("reactor: init backend: %w", err)
	}
	r := &Reactor{
		backend: backend,
		slots:   make(map[int]*slot),
		scratch: make([]ReadyFD, 0, 256),
	}
	wfd, write, closeFn, err := newWakeup()
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("reactor: init wakeup: %w", err)
	}
	r.wakeFD = wfd
	r.wakeWrite = write
	r.wakeClose = closeFn
	if err := backend.Add(wfd, Read); err != nil {
		_ = closeFn()
		_ = backend.Close()
		return nil, fmt.Errorf("reactor: register wakeup fd: %w", err)
	}
	return r, nil
}

// AddWatcher registers interest in fd becoming ready for the given
// direction(s), parking waker to be unparked exactly once when it fires.
// Interest must be exactly one of Read or Write (Error/Hangup are reported
// alongside whichever direction is being watched, never registered alone).
func (r *Reactor) AddWatcher(fd int, interest Events, waker Waker) error {
	if interest != Read && interest != Write {
		return fmt.Errorf("reactor: interest must be exactly Read or Write, got %s", interest)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	s, ok := r.slots[fd]
	if !ok {
		s = &slot{}
	}
	if interest == Read && s.read != nil {
		return ErrWatcherExists
	}
	if interest == Write && s.write != nil {
		return ErrWatcherExists
	}
	wasNew := !ok
	if interest == Read {
		s.read = waker
	} else {
		s.write = waker
	}
	r.slots[fd] = s

	want := Events(0)
	if s.read != nil {
		want |= Read
	}
	if s.write != nil {
		want |= Write
	}
	if wasNew {
		return r.backend.Add(fd, want)
	}
	return r.backend.Modify(fd, want)
}

// RemoveWatcher cancels a previously-registered watcher, if any. It is not
// an error to remove a watcher that already fired or was never registered.
func (r *Reactor) RemoveWatcher(fd int, interest Events) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	s, ok := r.slots[fd]
	if !ok {
		return nil
	}
	if interest == Read {
		s.read = nil
	}
	if interest == Write {
		s.write = nil
	}
	if s.read == nil && s.write == nil {
		delete(r.slots, fd)
		return r.backend.Remove(fd)
	}
	want := Events(0)
	if s.read != nil {
		want |= Read
	}
	if s.write != nil {
		want |= Write
	}
	return r.backend.Modify(fd, want)
}

// Wake interrupts a blocked Run call from any goroutine. Safe to call
// concurrently and after the watched fd set is empty.
func (r *Reactor) Wake() error {
	return r.wakeWrite()
}

// Run performs one wait/dispatch cycle, blocking up to timeoutMs
// milliseconds (a negative value blocks until at least one event, or a
// Wake call, arrives). It returns the number of watcher callbacks invoked.
func (r *Reactor) Run(timeoutMs int) (int, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, ErrClosed
	}
	r.mu.Unlock()

	events, err := r.backend.Wait(timeoutMs, r.scratch[:0])
	if err != nil {
		return 0, err
	}
	r.scratch = events

	fired := 0
	for _, rdy := range events {
		if rdy.FD == r.wakeFD {
			_ = drainWakeup(rdy.FD)
			continue
		}
		fired += r.dispatch(rdy.FD, rdy.Events)
	}
	return fired, nil
}

func (r *Reactor) dispatch(fd int, events Events) int {
	r.mu.Lock()
	s, ok := r.slots[fd]
	if !ok {
		r.mu.Unlock()
		return 0
	}
	var read, write Waker
	errlike := events&(Error|Hangup) != 0
	if (events&Read != 0 || errlike) && s.read != nil {
		read = s.read
		s.read = nil
	}
	if (events&Write != 0 || errlike) && s.write != nil {
		write = s.write
		s.write = nil
	}
	if s.read == nil && s.write == nil {
		delete(r.slots, fd)
		_ = r.backend.Remove(fd)
	} else {
		want := Events(0)
		if s.read != nil {
			want |= Read
		}
		if s.write != nil {
			want |= Write
		}
		_ = r.backend.Modify(fd, want)
	}
	r.mu.Unlock()

	n := 0
	if read != nil {
		read.Unpark()
		n++
	}
	if write != nil {
		write.Unpark()
		n++
	}
	return n
}

// Close releases the backend and wakeup primitive. Outstanding watchers are
// dropped without being unparked — callers are expected to have already
// cancelled their tasks before tearing down the executor that owns this
// reactor.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.slots = nil
	r.mu.Unlock()

	err := r.wakeClose()
	if berr := r.backend.Close(); err == nil {
		err = berr
	}
	return err
}

// SignalWatcher is the documented boundary interface for OS signal
// integration (spec Non-goal: the reactor does not itself call
// signal.Notify). A caller wanting signal-driven wakeups implements this by
// forwarding delivered signals into Notify, typically from a goroutine
// reading a channel registered with signal.Notify.
type SignalWatcher interface {
	// Notify is invoked once per delivered signal of interest. Implementations
	// typically translate this into a Wake() call plus some side channel
	// carrying which signal arrived.
	Notify(sig int)
}
