package future

import (
	"errors"

	"github.com/corvid-labs/goflow/task"
)

// ErrInvalidPollState is returned by PollComplete when it is called again
// after the sink has already surfaced an error — resolving the design
// question of what a sink should do if polled past failure: it must not
// silently report Ready, it must keep reporting this error so callers can
// never mistake a post-failure poll for success.
var ErrInvalidPollState = errors.New("future: sink polled again after a prior error")

// StartSendResult reports whether a Sink accepted an item immediately or
// needs the caller to wait for capacity.
type StartSendResult uint8

const (
	// Accepted means the item was taken in; the caller may call StartSend
	// again without an intervening PollComplete.
	Accepted StartSendResult = iota
	// Full means the sink could not accept the item right now; the same
	// item must be retried after PollComplete reports Ready.
	Full
)

// Sink is the write-side dual of Stream: items are handed in via StartSend
// and actually flushed via PollComplete, which also doubles as the
// backpressure signal (NotReady) when internal buffering is at capacity.
type Sink[T any] interface {
	// StartSend attempts to hand v to the sink. If it returns Full, the
	// caller must retry the exact same v after PollComplete next reports
	// Ready, instead of advancing to the next item.
	StartSend(v T) (StartSendResult, error)
	// PollComplete flushes buffered items to the underlying transport. It
	// must be idempotent when there is nothing left to flush (returns
	// Ready immediately), and once it has returned Err once, every
	// subsequent call must return Err(ErrInvalidPollState).
	PollComplete() task.Poll[struct{}]
}
