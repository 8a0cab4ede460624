package metrics

import "github.com/corvid-labs/goflow/task"

// executorRecorder adapts Metrics to task.MetricsRecorder for one named
// executor, letting multiple executors in a single process share one
// Metrics registry while remaining distinguishable by label.
type executorRecorder struct {
	m    *Metrics
	name string
}

// ForExecutor returns a task.MetricsRecorder reporting under the given
// executor name label.
func (m *Metrics) ForExecutor(name string) task.MetricsRecorder {
	return &executorRecorder{m: m, name: name}
}

func (r *executorRecorder) TasksLive(n int) {
	r.m.TasksLive.WithLabelValues(r.name).Set(float64(n))
}

func (r *executorRecorder) TimersPending(n int) {
	r.m.TimersPending.WithLabelValues(r.name).Set(float64(n))
}

func (r *executorRecorder) TickLatency(seconds float64) {
	r.m.TickLatency.WithLabelValues(r.name).Observe(seconds)
}
