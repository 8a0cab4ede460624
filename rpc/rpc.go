// Package rpc implements the L6 layer: a server orchestrator that dispatches
// decoded requests to a Service and stages their responses back in strict
// FIFO order despite the service completing them out of order, and a
// pipelined client dispatcher that lets a caller issue many requests before
// any response has arrived, resolving each in turn as responses come back.
package rpc

import (
	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/task"
)

// Service handles one decoded request, returning a Future for its response.
// Multiple Service invocations may be in flight concurrently (bounded by
// Server's MaxInFlight); a Service implementation must be safe for
// concurrent use.
type Service[Req, Resp any] func(Req) future.Future[Resp]

// pendingResponse is a response future staged at a known position in the
// FIFO output order, resolved independently of when the underlying Service
// call actually completes. Every pendingResponse is polled on every Server
// tick regardless of queue position — done latches once it settles, since a
// Future must not be polled again after Ready/Err — and is only staged into
// the response sink once it reaches the head of the queue.
type pendingResponse[Resp any] struct {
	fut    future.Future[Resp]
	result task.Poll[Resp]
	done   bool
}
