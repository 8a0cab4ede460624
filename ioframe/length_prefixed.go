package ioframe

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/corvid-labs/goflow/buffer"
	"github.com/corvid-labs/goflow/future"
)

// MaxFrameSize bounds a single length-prefixed frame, guarding against a
// corrupt or hostile peer claiming an unbounded length.
const MaxFrameSize = 64 * 1024 * 1024

// LengthPrefixedCodec is a 4-byte-big-endian-length-prefixed framing,
// shipped only as the fixture this package's own tests exercise
// FramedStream/FramedSink against — concrete wire
// codecs are an external collaborator's concern, not this runtime's.
type LengthPrefixedCodec struct{}

func (LengthPrefixedCodec) Decode(buf *buffer.Buffer) (future.Option[[]byte], error) {
	if buf.Len() < 4 {
		return future.None[[]byte](), nil
	}
	b := buf.Bytes()
	n := binary.BigEndian.Uint32(b[:4])
	if n > MaxFrameSize {
		return future.None[[]byte](), fmt.Errorf("ioframe: frame length %d exceeds max %d", n, MaxFrameSize)
	}
	if buf.Len() < 4+int(n) {
		return future.None[[]byte](), nil
	}
	frame := append([]byte(nil), b[4:4+n]...)
	buf.TrimStart(4 + int(n))
	return future.Some(frame), nil
}

func (LengthPrefixedCodec) DecodeEOF(buf *buffer.Buffer) (future.Option[[]byte], error) {
	if buf.Len() == 0 {
		return future.None[[]byte](), nil
	}
	return future.None[[]byte](), io.ErrUnexpectedEOF
}

func (LengthPrefixedCodec) Encode(v []byte, buf *buffer.Buffer) error {
	if len(v) > MaxFrameSize {
		return fmt.Errorf("ioframe: frame length %d exceeds max %d", len(v), MaxFrameSize)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(v)))
	buf.Append(hdr[:])
	buf.Append(v)
	return nil
}
