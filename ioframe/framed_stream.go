package ioframe

import (
	"errors"

	"github.com/corvid-labs/goflow/buffer"
	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

// readChunk is how many bytes FramedStream asks the channel for at a time
// when it needs more data to decode a frame.
const readChunk = 4096

// ErrStreamInvalidPollState mirrors ErrInvalidPollState for the read side:
// once a FramedStream has surfaced an error, every subsequent Poll must
// keep reporting it rather than risk resuming mid-frame.
var ErrStreamInvalidPollState = errors.New("ioframe: stream polled again after a prior error")

// FramedStream turns a Reader (raw, possibly partial, byte arrivals) into a
// Stream[T] of fully-decoded frames. It implements the read loop exactly:
// pull more bytes only when the codec says it needs them, decode as many
// complete frames as are already buffered before asking for more, and once
// end-of-stream is observed, give the codec one DecodeEOF chance to salvage
// or reject a final partial frame.
type FramedStream[T any] struct {
	ch    Reader
	codec Decoder[T]
	buf   *buffer.Buffer
	eof   bool
	// eofDone latches once DecodeEOF has run, so it is never called twice.
	eofDone bool
	err     error
}

// NewFramedStream constructs a FramedStream reading from ch and decoding
// with codec, using an internal buffer seeded with the given initial
// capacity (it grows as needed).
func NewFramedStream[T any](ch Reader, codec Decoder[T], initialCapacity int) *FramedStream[T] {
	return &FramedStream[T]{ch: ch, codec: codec, buf: buffer.New(initialCapacity)}
}

func (f *FramedStream[T]) Poll() task.Poll[future.Option[T]] {
	if f.err != nil {
		return task.Err[future.Option[T]](ErrStreamInvalidPollState)
	}

	for {
		if !f.eof {
			opt, err := f.codec.Decode(f.buf)
			if err != nil {
				f.err = err
				return task.Err[future.Option[T]](err)
			}
			if v, ok := opt.Get(); ok {
				return task.Ready(future.Some(v))
			}
		} else {
			if f.eofDone {
				return task.Ready(future.None[T]())
			}
			f.eofDone = true
			opt, err := f.codec.DecodeEOF(f.buf)
			if err != nil {
				f.err = err
				return task.Err[future.Option[T]](err)
			}
			if v, ok := opt.Get(); ok {
				return task.Ready(future.Some(v))
			}
			return task.Ready(future.None[T]())
		}

		f.buf.Unshare()
		tail := f.buf.WritableTail(readChunk)
		p := f.ch.PollRead(tail)
		if p.IsNotReady() {
			return task.NotReady[future.Option[T]]()
		}
		if p.IsErr() {
			f.err = p.Error()
			return task.Err[future.Option[T]](f.err)
		}
		n, _ := p.Value()
		if n == 0 {
			f.eof = true
			continue
		}
		f.buf.Commit(n)
	}
}

// Cancel is a no-op: FramedStream holds no resources of its own beyond the
// buffer and the Reader, which its owner is responsible for closing.
func (f *FramedStream[T]) Cancel() {}
