package rpc

import (
	"errors"

	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

var errSentinelForTest = errors.New("rpc test: sentinel stream failure")

// queueStream yields each element of vals in order, then either None
// (terminalErr == nil) or Err(terminalErr) exactly once.
type queueStream[T any] struct {
	vals       []T
	idx        int
	terminalErr error
	cancelled  bool
}

func (q *queueStream[T]) Poll() task.Poll[future.Option[T]] {
	if q.idx >= len(q.vals) {
		if q.terminalErr != nil {
			return task.Err[future.Option[T]](q.terminalErr)
		}
		return task.Ready(future.None[T]())
	}
	v := q.vals[q.idx]
	q.idx++
	return task.Ready(future.Some(v))
}

func (q *queueStream[T]) Cancel() { q.cancelled = true }

// captureSink records every item StartSend accepts, in order. fullOnce, if
// set, makes exactly the next StartSend report Full before reverting to
// accepting.
type captureSink[T any] struct {
	sent     []T
	fullOnce bool
}

func (c *captureSink[T]) StartSend(v T) (future.StartSendResult, error) {
	if c.fullOnce {
		c.fullOnce = false
		return future.Full, nil
	}
	c.sent = append(c.sent, v)
	return future.Accepted, nil
}

func (c *captureSink[T]) PollComplete() task.Poll[struct{}] { return task.Ready(struct{}{}) }

// manualFuture is a Future[T] a test resolves explicitly, standing in for a
// Service call whose completion order is under the test's control.
type manualFuture[T any] struct {
	ready bool
	val   T
	err   error
}

func (m *manualFuture[T]) Poll() task.Poll[T] {
	if !m.ready {
		return task.NotReady[T]()
	}
	if m.err != nil {
		return task.Err[T](m.err)
	}
	return task.Ready(m.val)
}

func (m *manualFuture[T]) Cancel() {}

func (m *manualFuture[T]) resolve(v T) {
	m.val = v
	m.ready = true
}

// pushStream lets a test feed response values in under its own control,
// simulating a peer replying at arbitrary times relative to the client's
// polling, plus an explicit end() / fail() terminal transition.
type pushStream[T any] struct {
	items []T
	err   error
	ended bool
}

func (p *pushStream[T]) push(v T) { p.items = append(p.items, v) }

func (p *pushStream[T]) end() { p.ended = true }

func (p *pushStream[T]) fail(err error) { p.err = err }

func (p *pushStream[T]) Poll() task.Poll[future.Option[T]] {
	if len(p.items) > 0 {
		v := p.items[0]
		p.items = p.items[1:]
		return task.Ready(future.Some(v))
	}
	if p.err != nil {
		return task.Err[future.Option[T]](p.err)
	}
	if p.ended {
		return task.Ready(future.None[T]())
	}
	return task.NotReady[future.Option[T]]()
}

func (p *pushStream[T]) Cancel() {}
