package rpc

import (
	"errors"
	"sync"

	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/logging"
	"github.com/corvid-labs/goflow/metrics"
	"github.com/corvid-labs/goflow/task"
)

// ErrClientClosed is returned by Call after Close.
var ErrClientClosed = errors.New("rpc: client closed")

// errEarlyEOF is the error every still-pending call is failed with if the
// peer's response stream ends while requests are still outstanding.
var errEarlyEOF = errors.New("rpc: connection closed with requests still pending a response")

type callEntry[Req, Resp any] struct {
	req Req
	p   *promise[Resp]
}

// Client is a pipelined RPC dispatcher: Call may be invoked many times
// before any response has arrived, each call's request is written to the
// wire as soon as the sink has capacity, and responses are matched back to
// calls purely by FIFO order — there is no correlation ID in the wire
// format, matching the transport-agnostic framing this runtime's L4/L5
// layers provide.
type Client[Req, Resp any] struct {
	reqSink    future.Sink[Req]
	respStream future.Stream[Resp]
	log        logging.Logger
	m          *metrics.Metrics

	mu        sync.Mutex
	queue     []*callEntry[Req, Resp]
	sentCount int
	closing   bool
	closed    bool
	closeErr  error
	// waker re-queues the clientRun driver task. It is captured from the
	// executor's Current task on every Poll, so Call and Close — both
	// callable from any goroutine, not just the driver's — can unpark a
	// parked driver instead of leaving newly queued work stranded until
	// something unrelated wakes it.
	waker task.Waker
}

// ClientOption configures a Client at construction.
type ClientOption[Req, Resp any] func(*Client[Req, Resp])

// WithClientLogger attaches a structured logging sink.
func WithClientLogger[Req, Resp any](l logging.Logger) ClientOption[Req, Resp] {
	return func(c *Client[Req, Resp]) { c.log = l }
}

// WithClientMetrics attaches Prometheus instrumentation.
func WithClientMetrics[Req, Resp any](m *metrics.Metrics) ClientOption[Req, Resp] {
	return func(c *Client[Req, Resp]) { c.m = m }
}

// NewClient constructs a Client writing requests to reqSink and reading
// responses from respStream. The returned Client must be driven via Run,
// spawned onto an Executor, for Call's futures to ever resolve.
func NewClient[Req, Resp any](reqSink future.Sink[Req], respStream future.Stream[Resp], opts ...ClientOption[Req, Resp]) *Client[Req, Resp] {
	c := &Client[Req, Resp]{
		reqSink:    reqSink,
		respStream: respStream,
		log:        logging.NoOp(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call enqueues req for sending and returns a Future resolving to its
// response once the peer replies, in FIFO order relative to every other
// outstanding Call on this Client. It attempts to wake the driver task
// (spawned via Run) so the request is flushed promptly rather than waiting
// for some unrelated event to next poll the driver.
func (c *Client[Req, Resp]) Call(req Req) future.Future[Resp] {
	c.mu.Lock()
	if c.closing || c.closed {
		c.mu.Unlock()
		return future.Failed[Resp](ErrClientClosed)
	}
	p := newPromise[Resp]()
	c.queue = append(c.queue, &callEntry[Req, Resp]{req: req, p: p})
	w := c.waker
	c.mu.Unlock()
	w.Unpark()
	return p
}

// Close stops accepting new calls and, once every already-queued call has
// been sent and resolved (or failed), lets Run's Poll complete.
func (c *Client[Req, Resp]) Close() {
	c.mu.Lock()
	c.closing = true
	w := c.waker
	c.mu.Unlock()
	w.Unpark()
}

// Run returns the Future that must be spawned onto an Executor to actually
// drive this Client's request sending and response dispatch.
func (c *Client[Req, Resp]) Run() future.Future[struct{}] { return (*clientRun[Req, Resp])(c) }

type clientRun[Req, Resp any] Client[Req, Resp]

func (r *clientRun[Req, Resp]) Poll() task.Poll[struct{}] {
	c := (*Client[Req, Resp])(r)

	if cur := task.Current(); cur != nil {
		c.mu.Lock()
		c.waker = cur.Waker()
		c.mu.Unlock()
	}

	c.mu.Lock()
	closed, closeErr := c.closed, c.closeErr
	c.mu.Unlock()
	if closed {
		if closeErr != nil {
			return task.Err[struct{}](closeErr)
		}
		return task.Ready(struct{}{})
	}

	for {
		progress := false

		for {
			c.mu.Lock()
			if c.sentCount >= len(c.queue) {
				c.mu.Unlock()
				break
			}
			entry := c.queue[c.sentCount]
			c.mu.Unlock()

			res, err := c.reqSink.StartSend(entry.req)
			if err != nil {
				c.failAllAndClose(err)
				return task.Err[struct{}](err)
			}
			if res == future.Full {
				if c.m != nil {
					c.m.SinkBackpressure.WithLabelValues("client").Inc()
				}
				break
			}
			c.mu.Lock()
			c.sentCount++
			c.mu.Unlock()
			progress = true
		}

		flush := c.reqSink.PollComplete()
		if flush.IsErr() {
			c.failAllAndClose(flush.Error())
			return task.Err[struct{}](flush.Error())
		}

		c.mu.Lock()
		hasOutstanding := len(c.queue) > 0
		c.mu.Unlock()
		if hasOutstanding {
			p := c.respStream.Poll()
			switch {
			case p.IsNotReady():
			case p.IsErr():
				c.failAllAndClose(p.Error())
				return task.Err[struct{}](p.Error())
			default:
				opt, _ := p.Value()
				v, ok := opt.Get()
				if !ok {
					c.failAllAndClose(errEarlyEOF)
					return task.Err[struct{}](errEarlyEOF)
				}
				c.mu.Lock()
				head := c.queue[0]
				c.queue = c.queue[1:]
				c.sentCount--
				c.mu.Unlock()
				head.p.resolve(v)
				progress = true
			}
		}

		c.mu.Lock()
		qlen := len(c.queue)
		c.mu.Unlock()
		if c.m != nil {
			c.m.RPCInFlight.WithLabelValues("client").Set(float64(qlen))
		}

		if !progress {
			break
		}
	}

	c.mu.Lock()
	closing, qlen := c.closing, len(c.queue)
	c.mu.Unlock()
	if closing && qlen == 0 {
		final := c.reqSink.PollComplete()
		if final.IsErr() {
			c.failAllAndClose(final.Error())
			return task.Err[struct{}](final.Error())
		}
		if final.IsReady() {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			return task.Ready(struct{}{})
		}
	}
	return task.NotReady[struct{}]()
}

func (r *clientRun[Req, Resp]) Cancel() {
	c := (*Client[Req, Resp])(r)
	c.failAllAndClose(future.ErrCancelled)
}

// failAllAndClose resolves every outstanding call's promise with err and
// marks the client permanently closed — mirroring the original design's
// "error fans out to every pending call on stream error or early end".
func (c *Client[Req, Resp]) failAllAndClose(err error) {
	c.mu.Lock()
	entries := c.queue
	c.queue = nil
	c.sentCount = 0
	c.closed = true
	c.closeErr = err
	c.mu.Unlock()

	for _, entry := range entries {
		entry.p.resolveErr(err)
	}
}
