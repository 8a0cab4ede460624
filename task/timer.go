package task

import (
	"container/heap"
	"time"

	"github.com/corvid-labs/goflow/reactor"
)

// timerEntry is one scheduled wakeup, ordered by deadline. Grounded on the
// predecessor runtime's timer heap: a container/heap.Interface over a slice,
// with a monotonically increasing sequence number to keep FIFO order among
// timers sharing a deadline.
type timerEntry struct {
	deadline time.Time
	seq      uint64
	waker    reactor.Waker
	cancelled bool
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// TimerHandle cancels a scheduled timer. Cancelling an already-fired timer
// is a no-op.
type TimerHandle struct {
	entry *timerEntry
}

// Cancel prevents the timer from firing, if it has not already fired.
func (h TimerHandle) Cancel() {
	if h.entry != nil {
		h.entry.cancelled = true
	}
}

// ScheduleTimer arranges for waker.Unpark to be called once, no earlier than
// d from now. Timers are processed on the executor's own goroutine between
// poll batches, never from a separate goroutine.
func (e *Executor) ScheduleTimer(d time.Duration, waker reactor.Waker) (TimerHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return TimerHandle{}, ErrExecutorClosed
	}
	e.timerSeq++
	entry := &timerEntry{
		deadline: e.now().Add(d),
		seq:      e.timerSeq,
		waker:    waker,
	}
	heap.Push(&e.timers, entry)
	return TimerHandle{entry: entry}, nil
}

// runDueTimers fires and pops every timer whose deadline has passed.
// Must be called from the executor's own goroutine.
func (e *Executor) runDueTimers() {
	now := e.now()
	e.mu.Lock()
	var fired []reactor.Waker
	for e.timers.Len() > 0 {
		next := e.timers[0]
		if next.cancelled {
			heap.Pop(&e.timers)
			continue
		}
		if next.deadline.After(now) {
			break
		}
		heap.Pop(&e.timers)
		fired = append(fired, next.waker)
	}
	e.mu.Unlock()
	for _, w := range fired {
		w.Unpark()
	}
}

// nextTimeout returns how long Run may safely block before a timer needs
// attention, or -1 if there are no pending timers.
func (e *Executor) nextTimeout() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.timers.Len() > 0 {
		next := e.timers[0]
		if next.cancelled {
			heap.Pop(&e.timers)
			continue
		}
		d := next.deadline.Sub(e.now())
		if d < 0 {
			d = 0
		}
		return d
	}
	return -1
}

func (e *Executor) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return time.Now()
}
