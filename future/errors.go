package future

import "fmt"

// CodecError wraps a failure raised by a Decoder/Encoder, distinguishing a
// malformed-data failure from a transport-level IOError.
type CodecError struct {
	Op    string // "decode", "decode_eof", or "encode"
	Cause error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("future: codec %s: %v", e.Op, e.Cause)
}

func (e *CodecError) Unwrap() error { return e.Cause }

// IOError wraps a failure from the underlying byte channel (syscall error,
// closed descriptor, etc.), keeping it distinguishable from a CodecError or
// a Service error raised by an RPC handler.
type IOError struct {
	Op    string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("future: io %s: %v", e.Op, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// ServiceError wraps a failure returned by an RPC service handler, as
// opposed to a transport or codec failure.
type ServiceError struct {
	Cause error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("future: service: %v", e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }
