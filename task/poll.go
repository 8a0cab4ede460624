// Package task implements the L1 executor and the Task/Waker/Poll portion of
// L2: a single-threaded, cooperative, polling-based scheduler. Tasks park
// themselves on a Waker when they cannot make progress and are re-polled only
// once that Waker is unparked — there is no preemption and no work-stealing
// across executors (each Executor owns exactly one goroutine's worth of
// task-polling).
package task

import "fmt"

// Poll is the result of polling a task or a leaf future/stream/sink for
// progress. The zero value is NotReady.
type Poll[T any] struct {
	tag   pollTag
	value T
	err   error
}

type pollTag uint8

const (
	tagNotReady pollTag = iota
	tagReady
	tagErr
)

// Ready constructs a completed, successful Poll.
func Ready[T any](v T) Poll[T] { return Poll[T]{tag: tagReady, value: v} }

// NotReady constructs a Poll indicating the caller should park and retry
// once woken.
func NotReady[T any]() Poll[T] { return Poll[T]{tag: tagNotReady} }

// Err constructs a completed, failed Poll. err must not be nil.
func Err[T any](err error) Poll[T] {
	if err == nil {
		panic("task: Err called with nil error")
	}
	return Poll[T]{tag: tagErr, err: err}
}

// IsReady reports whether the poll completed successfully.
func (p Poll[T]) IsReady() bool { return p.tag == tagReady }

// IsNotReady reports whether the caller should park and retry later.
func (p Poll[T]) IsNotReady() bool { return p.tag == tagNotReady }

// IsErr reports whether the poll completed with an error.
func (p Poll[T]) IsErr() bool { return p.tag == tagErr }

// Value returns the ready value and true, or the zero value and false if the
// poll was not in the Ready state.
func (p Poll[T]) Value() (T, bool) {
	if p.tag != tagReady {
		var zero T
		return zero, false
	}
	return p.value, true
}

// Error returns the error carried by an Err poll, or nil otherwise.
func (p Poll[T]) Error() error { return p.err }

func (p Poll[T]) String() string {
	switch p.tag {
	case tagReady:
		return fmt.Sprintf("Ready(%v)", p.value)
	case tagErr:
		return fmt.Sprintf("Err(%v)", p.err)
	default:
		return "NotReady"
	}
}

// MapPoll transforms a ready value, leaving NotReady/Err untouched.
func MapPoll[T, U any](p Poll[T], f func(T) U) Poll[U] {
	switch p.tag {
	case tagReady:
		return Ready(f(p.value))
	case tagErr:
		return Err[U](p.err)
	default:
		return NotReady[U]()
	}
}
