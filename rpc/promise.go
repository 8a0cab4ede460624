package rpc

import (
	"sync"

	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

// promise is a Future[T] resolved by some other piece of code, not by
// polling anything itself — the handle Client.Call hands back to a caller
// while the actual request/response plumbing happens on the Client's own
// driving task. Grounded on the predecessor runtime's promise type,
// generalized from its JS-flavoured Result/subscriber-fanout shape down to
// exactly what a single-resolution Future[T] needs: one slot, one waker.
type promise[T any] struct {
	mu       sync.Mutex
	settled  bool
	value    T
	err      error
	waker    task.Waker
	hasWaker bool
}

func newPromise[T any]() *promise[T] { return &promise[T]{} }

func (p *promise[T]) Poll() task.Poll[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled {
		if p.err != nil {
			return task.Err[T](p.err)
		}
		return task.Ready(p.value)
	}
	p.waker = task.Park()
	p.hasWaker = true
	return task.NotReady[T]()
}

func (p *promise[T]) Cancel() { p.resolveErr(future.ErrCancelled) }

func (p *promise[T]) resolve(v T) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.value = v
	w, hw := p.waker, p.hasWaker
	p.mu.Unlock()
	if hw {
		w.Unpark()
	}
}

func (p *promise[T]) resolveErr(err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.err = err
	w, hw := p.waker, p.hasWaker
	p.mu.Unlock()
	if hw {
		w.Unpark()
	}
}
