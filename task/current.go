package task

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// currentTasks maps a goroutine's runtime ID to the Task it is currently
// polling. Each Executor.Run loop occupies exactly one goroutine, so a
// goroutine-ID-keyed map gives every executor goroutine its own scoped
// "current task" slot without needing a parameter threaded through every
// Future/Stream/Sink Poll call — the same trick this runtime's predecessor
// used to confirm which goroutine owned a given event loop.
var currentTasks sync.Map // map[uint64]*Task

func setCurrent(t *Task) {
	currentTasks.Store(goroutineID(), t)
}

func clearCurrent() {
	currentTasks.Delete(goroutineID())
}

// Current returns the Task presently being polled on the calling goroutine,
// or nil if none.
func Current() *Task {
	v, ok := currentTasks.Load(goroutineID())
	if !ok {
		return nil
	}
	return v.(*Task)
}

// Park marks the currently-polling task as waiting and returns a Waker that
// will re-queue it for polling once Unpark is called. It panics with
// ErrParkOutsidePoll if called outside of an Executor's poll of some task —
// there is no current task to park.
func Park() Waker {
	t := Current()
	if t == nil {
		panic(ErrParkOutsidePoll)
	}
	t.markParked()
	return Waker{id: t.id, exec: t.exec}
}

// goroutineID extracts the calling goroutine's runtime ID by parsing the
// "goroutine N [...]" header of a runtime.Stack dump. This is the same
// technique used to verify loop-thread affinity in the predecessor runtime;
// it is slow relative to a real TLS slot but Go exposes none, and this is
// only ever called once per poll, not per instruction.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
