package future

import "github.com/corvid-labs/goflow/task"

// Stream is a future that, instead of completing once, yields zero or more
// values (each an Option[T]) before terminating: Poll returns
// Ready(Some(v)) per element, Ready(None()) exactly once at end-of-stream,
// and must not be polled again after that.
type Stream[T any] interface {
	Poll() task.Poll[Option[T]]
	Cancel()
}

// mapStream transforms each element of a Stream.
type mapStream[T, U any] struct {
	inner Stream[T]
	f     func(T) U
}

// MapStream transforms every element yielded by inner.
func MapStream[T, U any](inner Stream[T], f func(T) U) Stream[U] {
	return &mapStream[T, U]{inner: inner, f: f}
}

func (m *mapStream[T, U]) Poll() task.Poll[Option[U]] {
	p := m.inner.Poll()
	if p.IsNotReady() {
		return task.NotReady[Option[U]]()
	}
	if p.IsErr() {
		return task.Err[Option[U]](p.Error())
	}
	opt, _ := p.Value()
	v, ok := opt.Get()
	if !ok {
		return task.Ready(None[U]())
	}
	return task.Ready(Some(m.f(v)))
}

func (m *mapStream[T, U]) Cancel() { m.inner.Cancel() }

// ForEach drives a Stream to completion, invoking f once per element. The
// returned Future resolves once the stream ends or errors.
func ForEach[T any](s Stream[T], f func(T)) Future[struct{}] {
	return &forEachFuture[T]{stream: s, f: f}
}

type forEachFuture[T any] struct {
	stream Stream[T]
	f      func(T)
}

func (fe *forEachFuture[T]) Poll() task.Poll[struct{}] {
	for {
		p := fe.stream.Poll()
		if p.IsNotReady() {
			return task.NotReady[struct{}]()
		}
		if p.IsErr() {
			return task.Err[struct{}](p.Error())
		}
		opt, _ := p.Value()
		v, ok := opt.Get()
		if !ok {
			return task.Ready(struct{}{})
		}
		fe.f(v)
	}
}

func (fe *forEachFuture[T]) Cancel() { fe.stream.Cancel() }

// Collect drains a Stream into a slice, resolving once it ends or errors.
func Collect[T any](s Stream[T]) Future[[]T] {
	return &collectFuture[T]{stream: s}
}

type collectFuture[T any] struct {
	stream Stream[T]
	vals   []T
}

func (c *collectFuture[T]) Poll() task.Poll[[]T] {
	for {
		p := c.stream.Poll()
		if p.IsNotReady() {
			return task.NotReady[[]T]()
		}
		if p.IsErr() {
			return task.Err[[]T](p.Error())
		}
		opt, _ := p.Value()
		v, ok := opt.Get()
		if !ok {
			return task.Ready(c.vals)
		}
		c.vals = append(c.vals, v)
	}
}

func (c *collectFuture[T]) Cancel() { c.stream.Cancel() }
