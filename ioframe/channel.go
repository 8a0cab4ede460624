package ioframe

import "github.com/corvid-labs/goflow/task"

// Reader is a non-blocking, pollable read half of a byte channel. A
// PollRead call that would block registers the current task to be woken
// (via the reactor, or whatever other readiness source the implementation
// uses) and returns NotReady; Ready(0) denotes end-of-stream, matching
// unix.Read's own EOF convention.
type Reader interface {
	PollRead(p []byte) task.Poll[int]
}

// Writer is the non-blocking, pollable write half of a byte channel.
type Writer interface {
	PollWrite(p []byte) task.Poll[int]
}

// ByteChannel is a full-duplex, non-blocking byte stream — the L4 "raw
// descriptor" abstraction that FramedStream/FramedSink, SendFuture and
// RecvFuture are all built against. DescriptorChannel is the only concrete
// implementation shipped here; TLS, buffered pipes, or in-memory test
// channels are all just other implementations of this same interface.
type ByteChannel interface {
	Reader
	Writer
	Close() error
}
