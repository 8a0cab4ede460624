// Package future implements the L2/L3 layer: Future, Stream and Sink — the
// polymorphic handles combinators and leaf I/O operations are built from —
// plus the Option type used in place of nullable stream elements.
package future

import (
	"errors"

	"github.com/corvid-labs/goflow/task"
)

// ErrCancelled is the error a Future/Stream/Sink reports when it completes
// because its owning task was cancelled rather than because it ran to
// completion or failed on its own terms.
var ErrCancelled = errors.New("future: cancelled")

// Future is the uniform polymorphic handle for a value computed
// asynchronously and cooperatively: repeated Poll calls until Ready or Err.
// A Go interface value already is the "boxed" handle design note 9 asks for
// — there is no separate erasure step needed the way a non-interface
// language would require.
type Future[T any] interface {
	// Poll drives the future forward. It must only be called from within a
	// task's poll (so task.Current is valid), and must not be called again
	// after it has returned Ready or Err.
	Poll() task.Poll[T]
	// Cancel requests cooperative cancellation; a subsequent Poll should
	// report Err(ErrCancelled) once the cancellation has been observed, or
	// may still report a legitimate result if it already completed.
	Cancel()
}

// Option is Some(v) or None, standing in for a stream's "no more elements"
// terminator without overloading a pointer or a zero value.
type Option[T any] struct {
	ok    bool
	value T
}

// Some constructs a present value.
func Some[T any](v T) Option[T] { return Option[T]{ok: true, value: v} }

// None constructs an absent value.
func None[T any]() Option[T] { return Option[T]{} }

// IsSome reports whether the option carries a value.
func (o Option[T]) IsSome() bool { return o.ok }

// Get returns the value and true, or the zero value and false.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// Box adapts any Future[T] to the Future[T] interface itself. Go interfaces
// already erase the concrete type, so Box is an identity function kept only
// so call sites written against the component design read the same way the
// specification's "boxed, type-erased handle" language does.
func Box[T any](f Future[T]) Future[T] { return f }
