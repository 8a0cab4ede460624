package ioframe

import (
	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

type sendState uint8

const (
	sendInit sendState = iota
	sendSent
	sendCancelled
)

// SendFuture writes data to a Writer in full, resolving once every byte has
// been accepted. Grounded on the original SendFuture INIT/SENT/CANCELLED
// state machine.
type SendFuture struct {
	ch    Writer
	data  []byte
	off   int
	state sendState
}

// NewSendFuture constructs a SendFuture writing data to ch.
func NewSendFuture(ch Writer, data []byte) *SendFuture {
	return &SendFuture{ch: ch, data: data}
}

func (s *SendFuture) Poll() task.Poll[struct{}] {
	switch s.state {
	case sendCancelled:
		return task.Err[struct{}](future.ErrCancelled)
	case sendSent:
		return task.Ready(struct{}{})
	}

	for s.off < len(s.data) {
		p := s.ch.PollWrite(s.data[s.off:])
		if p.IsNotReady() {
			return task.NotReady[struct{}]()
		}
		if p.IsErr() {
			return task.Err[struct{}](p.Error())
		}
		n, _ := p.Value()
		s.off += n
	}
	s.state = sendSent
	return task.Ready(struct{}{})
}

// Cancel marks the future cancelled; a subsequent Poll reports
// future.ErrCancelled instead of resuming the write.
func (s *SendFuture) Cancel() {
	if s.state == sendInit {
		s.state = sendCancelled
	}
}
