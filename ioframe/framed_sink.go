package ioframe

import (
	"github.com/corvid-labs/goflow/buffer"
	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

// HighWaterMark is the default write-buffer size above which StartSend
// refuses new items (returning future.Full) until PollComplete has drained
// some of it — the sink's only backpressure signal. Override it per-instance
// with WithHighWaterMark.
const HighWaterMark = 16 * 1024

// SinkOption configures a FramedSink at construction.
type SinkOption func(*sinkConfig)

type sinkConfig struct {
	hwm int
}

// WithHighWaterMark overrides HighWaterMark for one FramedSink instance —
// e.g. to wire rconfig.RPCConfig.SinkHighWaterMark through to a server's
// response sink.
func WithHighWaterMark(n int) SinkOption {
	return func(c *sinkConfig) { c.hwm = n }
}

// FramedSink turns a Writer plus an Encoder into a Sink[T]: StartSend
// encodes into an internal buffer (subject to its high-water mark),
// PollComplete flushes that buffer to the channel, stopping as soon as the
// channel would block. Once either call surfaces an error, every later call
// returns future.ErrInvalidPollState instead of risking a second, possibly
// misleading, attempt.
type FramedSink[T any] struct {
	ch    Writer
	codec Encoder[T]
	buf   *buffer.Buffer
	hwm   int
	err   error
}

// NewFramedSink constructs a FramedSink writing to ch via codec.
func NewFramedSink[T any](ch Writer, codec Encoder[T], initialCapacity int, opts ...SinkOption) *FramedSink[T] {
	cfg := sinkConfig{hwm: HighWaterMark}
	for _, o := range opts {
		o(&cfg)
	}
	return &FramedSink[T]{ch: ch, codec: codec, buf: buffer.New(initialCapacity), hwm: cfg.hwm}
}

func (s *FramedSink[T]) StartSend(v T) (future.StartSendResult, error) {
	if s.err != nil {
		return future.Full, future.ErrInvalidPollState
	}
	if s.buf.Len() >= s.hwm {
		// Attempt a flush before refusing the item — the buffer may have
		// since drained enough (or entirely) for the channel to accept
		// more writes, and rejecting without trying first would report
		// backpressure that no longer exists.
		if p := s.PollComplete(); p.IsErr() {
			return future.Full, p.Error()
		}
		if s.buf.Len() >= s.hwm {
			return future.Full, nil
		}
	}
	if err := s.codec.Encode(v, s.buf); err != nil {
		s.err = err
		return future.Full, err
	}
	// Opportunistically flush what we can right away; a NotReady channel
	// write is not an error here, just means the rest waits for the next
	// explicit PollComplete.
	if p := s.PollComplete(); p.IsErr() {
		return future.Accepted, p.Error()
	}
	return future.Accepted, nil
}

func (s *FramedSink[T]) PollComplete() task.Poll[struct{}] {
	if s.err != nil {
		return task.Err[struct{}](future.ErrInvalidPollState)
	}
	for s.buf.Len() > 0 {
		p := s.ch.PollWrite(s.buf.Bytes())
		if p.IsNotReady() {
			return task.NotReady[struct{}]()
		}
		if p.IsErr() {
			s.err = p.Error()
			return task.Err[struct{}](p.Error())
		}
		n, _ := p.Value()
		s.buf.TrimStart(n)
	}
	return task.Ready(struct{}{})
}

// Pending reports how many bytes are buffered and not yet flushed —
// exposed for metrics. Nothing in this module reads it; the rpc package
// does not set a queue-depth gauge from it.
func (s *FramedSink[T]) Pending() int { return s.buf.Len() }
