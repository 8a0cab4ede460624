package ioframe

import (
	"io"

	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

type recvState uint8

const (
	recvInit recvState = iota
	recvDone
	recvCancelled
)

// RecvFuture reads from a Reader until its ReadPolicy is satisfied,
// resolving to exactly the bytes read (truncated to the policy's target for
// TransferExactly). Grounded on the original RecvFuture<ReadPolicy>
// INIT/DONE/CANCELLED state machine.
type RecvFuture struct {
	ch     Reader
	policy ReadPolicy
	got    []byte
	state  recvState
}

// NewRecvFuture constructs a RecvFuture reading from ch per policy.
func NewRecvFuture(ch Reader, policy ReadPolicy) *RecvFuture {
	return &RecvFuture{ch: ch, policy: policy}
}

func (r *RecvFuture) Poll() task.Poll[[]byte] {
	switch r.state {
	case recvCancelled:
		return task.Err[[]byte](future.ErrCancelled)
	case recvDone:
		return task.Ready(r.got)
	}

	target, exact := r.policy.target()
	for len(r.got) < target {
		chunk := make([]byte, target-len(r.got))
		p := r.ch.PollRead(chunk)
		if p.IsNotReady() {
			return task.NotReady[[]byte]()
		}
		if p.IsErr() {
			return task.Err[[]byte](p.Error())
		}
		n, _ := p.Value()
		if n == 0 {
			return task.Err[[]byte](io.ErrUnexpectedEOF)
		}
		r.got = append(r.got, chunk[:n]...)
	}
	if exact && len(r.got) > target {
		r.got = r.got[:target]
	}
	r.state = recvDone
	return task.Ready(r.got)
}

// Cancel marks the future cancelled; a subsequent Poll reports
// future.ErrCancelled instead of resuming the read.
func (r *RecvFuture) Cancel() {
	if r.state == recvInit {
		r.state = recvCancelled
	}
}
