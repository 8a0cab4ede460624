// Package metrics provides the runtime's Prometheus instrumentation,
// replacing the predecessor's hand-rolled P-Square streaming-percentile
// estimator with github.com/prometheus/client_golang — the library the
// rest of the example pack reaches for (see
// Generativebots-ocx-backend-go-svc/internal/escrow/metrics.go) whenever it
// needs latency/counter/gauge instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector goflow's layers report through.
// A nil *Metrics is not valid — use NoOp() for a safe, unregistered
// placeholder instead.
type Metrics struct {
	TickLatency    *prometheus.HistogramVec
	TasksLive      *prometheus.GaugeVec
	TimersPending  *prometheus.GaugeVec
	ReactorEvents  *prometheus.CounterVec
	WatchersActive *prometheus.GaugeVec

	SinkQueueDepth  *prometheus.GaugeVec
	SinkBackpressure *prometheus.CounterVec

	RPCInFlight    *prometheus.GaugeVec
	RPCCallTotal   *prometheus.CounterVec
	RPCCallLatency *prometheus.HistogramVec
	RPCOverload    *prometheus.CounterVec
}

// New registers a fresh set of collectors against reg. Pass
// prometheus.NewRegistry() for an isolated test registry, or
// prometheus.DefaultRegisterer-wrapping registry for a process-wide one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TickLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "goflow_executor_tick_latency_seconds",
			Help:    "Wall time spent draining one ready-queue batch, per executor.",
			Buckets: prometheus.DefBuckets,
		}, []string{"executor"}),
		TasksLive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "goflow_executor_tasks_live",
			Help: "Approximate number of live (non-collected, non-done) tasks.",
		}, []string{"executor"}),
		TimersPending: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "goflow_executor_timers_pending",
			Help: "Number of timers currently scheduled.",
		}, []string{"executor"}),
		ReactorEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "goflow_reactor_events_total",
			Help: "Total readiness events dispatched by the reactor.",
		}, []string{"executor", "direction"}),
		WatchersActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "goflow_reactor_watchers_active",
			Help: "Number of outstanding one-shot watchers.",
		}, []string{"executor"}),
		SinkQueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "goflow_sink_queue_depth_bytes",
			Help: "Bytes currently buffered in a FramedSink awaiting flush.",
		}, []string{"sink"}),
		SinkBackpressure: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "goflow_sink_backpressure_total",
			Help: "Total StartSend calls that returned Full due to the high-water mark.",
		}, []string{"sink"}),
		RPCInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "goflow_rpc_inflight",
			Help: "Number of in-progress service invocations or pending client calls.",
		}, []string{"role"}),
		RPCCallTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "goflow_rpc_calls_total",
			Help: "Total RPC calls completed, by role and outcome.",
		}, []string{"role", "outcome"}),
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "goflow_rpc_call_latency_seconds",
			Help:    "End-to-end latency of one RPC call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"role"}),
		RPCOverload: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "goflow_rpc_overload_total",
			Help: "Total times the overload/backpressure signal fired.",
		}, []string{"role"}),
	}
}

// NoOp returns a Metrics backed by an isolated, never-scraped registry —
// for callers that want the instrumentation call sites to stay live without
// reporting anywhere.
func NoOp() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveSince is a small convenience used throughout the runtime to record
// a duration histogram from a start time.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
