package ioframe

import "github.com/corvid-labs/goflow/task"

// fakeReader hands out data in whatever chunks the caller's buffer allows,
// optionally blocking (NotReady) exactly once on demand, and reporting EOF
// via Ready(0) once data is exhausted and eof is set.
type fakeReader struct {
	data    []byte
	eof     bool
	pending bool
}

func (f *fakeReader) PollRead(p []byte) task.Poll[int] {
	if f.pending {
		f.pending = false
		return task.NotReady[int]()
	}
	if len(f.data) == 0 {
		if f.eof {
			return task.Ready(0)
		}
		return task.NotReady[int]()
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return task.Ready(n)
}

// fakeWriter records everything written to it, optionally truncating each
// call to maxPerCall bytes (to exercise partial-write loops) and optionally
// blocking or failing on the next call.
type fakeWriter struct {
	written    []byte
	maxPerCall int
	blockNext  bool
	failNext   error
}

func (w *fakeWriter) PollWrite(p []byte) task.Poll[int] {
	if w.failNext != nil {
		err := w.failNext
		w.failNext = nil
		return task.Err[int](err)
	}
	if w.blockNext {
		w.blockNext = false
		return task.NotReady[int]()
	}
	n := len(p)
	if w.maxPerCall > 0 && n > w.maxPerCall {
		n = w.maxPerCall
	}
	w.written = append(w.written, p[:n]...)
	return task.Ready(n)
}
