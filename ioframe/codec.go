// Package ioframe implements the L4/L5 layers: the non-blocking byte
// channel abstraction, the Codec boundary contract, and the FramedStream/
// FramedSink adapters that turn a raw byte channel into a typed
// Stream/Sink of decoded frames.
package ioframe

import (
	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/buffer"
)

// Decoder turns buffered bytes into frames. Decode is called whenever new
// bytes might have arrived; returning future.None with a nil error means
// "not enough data yet, call again after more bytes arrive". DecodeEOF is
// called exactly once, after the channel has reported end-of-stream, to
// give the codec a chance to salvage a final frame from whatever is left
// in the buffer (or to reject a truncated trailing frame).
type Decoder[T any] interface {
	Decode(buf *buffer.Buffer) (future.Option[T], error)
	DecodeEOF(buf *buffer.Buffer) (future.Option[T], error)
}

// Encoder serializes a value into the sink's write buffer.
type Encoder[T any] interface {
	Encode(v T, buf *buffer.Buffer) error
}

// Codec is the full external collaborator contract for a concrete wire
// format (e.g. a request/response protocol's framing). goflow ships no
// production codec of its own — concrete codecs are explicitly out of
// scope — only the LengthPrefixedCodec fixture used by this package's own
// tests.
type Codec[In, Out any] interface {
	Decoder[In]
	Encoder[Out]
}
