package future

import "github.com/corvid-labs/goflow/task"

// mapFuture applies f to the ready value of inner, lazily — inner is only
// polled, f is only invoked, once per Poll call that actually observes
// Ready.
type mapFuture[T, U any] struct {
	inner Future[T]
	f     func(T) U
}

// Map transforms a Future's eventual value without altering its timing.
func Map[T, U any](inner Future[T], f func(T) U) Future[U] {
	return &mapFuture[T, U]{inner: inner, f: f}
}

func (m *mapFuture[T, U]) Poll() task.Poll[U] {
	return task.MapPoll(m.inner.Poll(), m.f)
}

func (m *mapFuture[T, U]) Cancel() { m.inner.Cancel() }

// andThenFuture sequences two futures: once inner completes successfully,
// f is called with its value to produce the next future to drive.
type andThenFuture[T, U any] struct {
	inner Future[T]
	f     func(T) Future[U]
	next  Future[U]
}

// AndThen chains a dependent future that is only constructed once the first
// completes successfully.
func AndThen[T, U any](inner Future[T], f func(T) Future[U]) Future[U] {
	return &andThenFuture[T, U]{inner: inner, f: f}
}

func (a *andThenFuture[T, U]) Poll() task.Poll[U] {
	if a.next != nil {
		return a.next.Poll()
	}
	p := a.inner.Poll()
	if p.IsNotReady() {
		return task.NotReady[U]()
	}
	if p.IsErr() {
		return task.Err[U](p.Error())
	}
	v, _ := p.Value()
	a.next = a.f(v)
	return a.next.Poll()
}

func (a *andThenFuture[T, U]) Cancel() {
	if a.next != nil {
		a.next.Cancel()
		return
	}
	a.inner.Cancel()
}

// orElseFuture recovers from an error by constructing a fallback future.
type orElseFuture[T any] struct {
	inner Future[T]
	f     func(error) Future[T]
	next  Future[T]
}

// OrElse recovers from inner's error by constructing and driving a fallback
// future in its place. A successful inner result passes through unchanged.
func OrElse[T any](inner Future[T], f func(error) Future[T]) Future[T] {
	return &orElseFuture[T]{inner: inner, f: f}
}

func (o *orElseFuture[T]) Poll() task.Poll[T] {
	if o.next != nil {
		return o.next.Poll()
	}
	p := o.inner.Poll()
	if !p.IsErr() {
		return p
	}
	o.next = o.f(p.Error())
	return o.next.Poll()
}

func (o *orElseFuture[T]) Cancel() {
	if o.next != nil {
		o.next.Cancel()
		return
	}
	o.inner.Cancel()
}

// thenFuture observes every outcome (Ready or Err) of inner, without
// altering it, via a side-effecting callback — the uniform "settle" hook
// combinators commonly need for logging/metrics.
type thenFuture[T any] struct {
	inner Future[T]
	f     func(task.Poll[T])
	fired bool
}

// Then registers f to observe inner's final outcome exactly once.
func Then[T any](inner Future[T], f func(task.Poll[T])) Future[T] {
	return &thenFuture[T]{inner: inner, f: f}
}

func (t *thenFuture[T]) Poll() task.Poll[T] {
	p := t.inner.Poll()
	if !t.fired && !p.IsNotReady() {
		t.fired = true
		t.f(p)
	}
	return p
}

func (t *thenFuture[T]) Cancel() { t.inner.Cancel() }

// Ready constructs a Future that is immediately Ready with v.
func Ready[T any](v T) Future[T] { return readyFuture[T]{v: v} }

type readyFuture[T any] struct{ v T }

func (r readyFuture[T]) Poll() task.Poll[T] { return task.Ready(r.v) }
func (r readyFuture[T]) Cancel()            {}

// Failed constructs a Future that is immediately Err(err).
func Failed[T any](err error) Future[T] { return failedFuture[T]{err: err} }

type failedFuture[T any] struct{ err error }

func (f failedFuture[T]) Poll() task.Poll[T] { return task.Err[T](f.err) }
func (f failedFuture[T]) Cancel()            {}
