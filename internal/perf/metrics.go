package perf

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the Prometheus surface exposed alongside a Recorder:
// a latency histogram and a tick counter. It registers on a
// caller-supplied *prometheus.Registry rather than the global default
// registry, since spec §5 requires each concurrent simulation run to
// own an independent set of this state.
type Metrics struct {
	latency prometheus.Histogram
	ticks   prometheus.Counter
}

// NewMetrics creates and registers the histogram and counter on reg.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mmsim_tick_latency_seconds",
			Help:    "Per-tick simulation loop latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mmsim_ticks_total",
			Help: "Total number of simulation ticks processed.",
		}),
	}
	if err := reg.Register(m.latency); err != nil {
		return nil, err
	}
	if err := reg.Register(m.ticks); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(latency time.Duration) {
	m.latency.Observe(latency.Seconds())
	m.ticks.Inc()
}
