package rpc

import (
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/joeycumines/go-catrate"

	"github.com/corvid-labs/goflow/future"
	"github.com/corvid-labs/goflow/logging"
	"github.com/corvid-labs/goflow/metrics"
	"github.com/corvid-labs/goflow/task"
)

// DefaultMaxInFlight bounds the number of concurrently in-progress Service
// invocations a Server allows before it stops pulling new requests off the
// decoder stream.
const DefaultMaxInFlight = 256

// Server drives one connection's request/response pipeline: pull decoded
// requests from reqs, dispatch each to service, and stage responses into
// resp in strict FIFO order, regardless of which Service call actually
// finishes first. Server itself implements future.Future[struct{}] — it is
// driven to completion the same way any other future is, typically via
// future.Spawn.
type Server[Req, Resp any] struct {
	reqs    future.Stream[Req]
	resp    future.Sink[Resp]
	service Service[Req, Resp]
	sem     *semaphore.Weighted

	limiter   *catrate.Limiter
	onOverload func(error)
	log        logging.Logger
	m          *metrics.Metrics

	pending   []*pendingResponse[Resp]
	reqsDone  bool
	cancelled bool
}

// ServerOption configures a Server at construction.
type ServerOption[Req, Resp any] func(*Server[Req, Resp])

// WithMaxInFlight bounds concurrently in-progress service invocations.
func WithMaxInFlight[Req, Resp any](n int64) ServerOption[Req, Resp] {
	return func(s *Server[Req, Resp]) { s.sem = semaphore.NewWeighted(n) }
}

// WithOverloadSignal wires a go-catrate sliding-window limiter: each time
// the response sink reports backpressure (Full), the server checks the
// limiter, and calls onOverload once the rate of backpressure events within
// the configured window exceeds the configured threshold — turning raw,
// frequent StartSend-returned-Full events into a much rarer, actionable
// overload signal.
func WithOverloadSignal[Req, Resp any](limiter *catrate.Limiter, onOverload func(error)) ServerOption[Req, Resp] {
	return func(s *Server[Req, Resp]) {
		s.limiter = limiter
		s.onOverload = onOverload
	}
}

// WithLogger attaches a structured logging sink.
func WithLogger[Req, Resp any](l logging.Logger) ServerOption[Req, Resp] {
	return func(s *Server[Req, Resp]) { s.log = l }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics[Req, Resp any](m *metrics.Metrics) ServerOption[Req, Resp] {
	return func(s *Server[Req, Resp]) { s.m = m }
}

// NewServer constructs a Server pulling requests from reqs, dispatching to
// service, and writing responses to resp.
func NewServer[Req, Resp any](reqs future.Stream[Req], resp future.Sink[Resp], service Service[Req, Resp], opts ...ServerOption[Req, Resp]) *Server[Req, Resp] {
	s := &Server[Req, Resp]{
		reqs:    reqs,
		resp:    resp,
		service: service,
		sem:     semaphore.NewWeighted(DefaultMaxInFlight),
		log:     logging.NoOp(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Poll drives the pipeline forward: stage settled responses into the sink
// (in order), flush the sink, and pull/dispatch new requests while there is
// spare in-flight capacity — repeating until none of those three steps make
// further progress this call.
func (s *Server[Req, Resp]) Poll() task.Poll[struct{}] {
	if s.cancelled {
		return task.Err[struct{}](future.ErrCancelled)
	}

	for {
		progress := false

		// Advance every in-flight service call, not just the head of the
		// queue, so a later call's future (which may itself be driven by a
		// timer or an I/O read) gets polled and makes progress even while an
		// earlier call is still pending — only the staging order below is
		// FIFO, not the order in which calls are allowed to run.
		for _, pr := range s.pending {
			if pr.done {
				continue
			}
			p := pr.fut.Poll()
			switch {
			case p.IsNotReady():
			case p.IsErr():
				return task.Err[struct{}](&future.ServiceError{Cause: p.Error()})
			default:
				pr.result = p
				pr.done = true
				progress = true
			}
		}

		for len(s.pending) > 0 {
			head := s.pending[0]
			if !head.done {
				break
			}
			v, _ := head.result.Value()
			res, err := s.resp.StartSend(v)
			if err != nil {
				return task.Err[struct{}](err)
			}
			if res == future.Full {
				s.recordBackpressure()
				break
			}
			s.pending = s.pending[1:]
			s.sem.Release(1)
			progress = true
		}

		flush := s.resp.PollComplete()
		if flush.IsErr() {
			return task.Err[struct{}](flush.Error())
		}

		if !s.reqsDone && s.sem.TryAcquire(1) {
			p := s.reqs.Poll()
			switch {
			case p.IsNotReady():
				s.sem.Release(1)
			case p.IsErr():
				s.sem.Release(1)
				return task.Err[struct{}](p.Error())
			default:
				opt, _ := p.Value()
				v, ok := opt.Get()
				if !ok {
					s.sem.Release(1)
					s.reqsDone = true
				} else {
					s.pending = append(s.pending, &pendingResponse[Resp]{fut: s.service(v)})
					progress = true
				}
			}
		}

		if s.m != nil {
			s.m.RPCInFlight.WithLabelValues("server").Set(float64(len(s.pending)))
		}

		if !progress {
			break
		}
	}

	if s.reqsDone && len(s.pending) == 0 {
		final := s.resp.PollComplete()
		if final.IsErr() {
			return task.Err[struct{}](final.Error())
		}
		if final.IsReady() {
			return task.Ready(struct{}{})
		}
	}
	return task.NotReady[struct{}]()
}

// Cancel aborts every in-progress Service call's future and marks the
// server cancelled; the next Poll reports future.ErrCancelled.
func (s *Server[Req, Resp]) Cancel() {
	s.cancelled = true
	s.reqs.Cancel()
	for _, p := range s.pending {
		p.fut.Cancel()
	}
}

func (s *Server[Req, Resp]) recordBackpressure() {
	if s.m != nil {
		s.m.SinkBackpressure.WithLabelValues("server").Inc()
	}
	if s.limiter == nil || s.onOverload == nil {
		return
	}
	if _, ok := s.limiter.Allow("backpressure"); !ok {
		if s.m != nil {
			s.m.RPCOverload.WithLabelValues("server").Inc()
		}
		s.onOverload(errOverloaded)
	}
}

var errOverloaded = errors.New("rpc: response sink backpressure rate exceeded configured threshold")
