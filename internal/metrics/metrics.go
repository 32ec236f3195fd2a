// Package metrics exports simulation timings and event counts to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/l1jgo/simcore/internal/core/event"
)

const namespace = "simcore"

// Metrics owns a private registry so tests and multiple worlds never collide
// on the global one.
type Metrics struct {
	reg *prometheus.Registry

	frames     prometheus.Counter
	frameTime  prometheus.Histogram
	systemTime *prometheus.HistogramVec
	events     *prometheus.CounterVec
	samples    []sample
}

type sample struct {
	gauge prometheus.Gauge
	read  func() float64
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames simulated.",
		}),
		frameTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall time spent running all systems for one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		systemTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "system_duration_seconds",
			Help:      "Wall time of one system update.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 14),
		}, []string{"system"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published on the bus, by domain.",
		}, []string{"kind"}),
	}
	m.reg.MustRegister(m.frames, m.frameTime, m.systemTime, m.events)
	return m
}

// ObserveSystem implements system.Observer.
func (m *Metrics) ObserveSystem(kind string, d time.Duration) {
	m.systemTime.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveFrame implements system.Observer. It runs on the simulation
// goroutine, so it is also where sampled gauges read world state.
func (m *Metrics) ObserveFrame(d time.Duration) {
	m.frames.Inc()
	m.frameTime.Observe(d.Seconds())
	for _, s := range m.samples {
		s.gauge.Set(s.read())
	}
}

// ObserveEvent counts one publish. Install with bus.Observe(m.ObserveEvent).
func (m *Metrics) ObserveEvent(k event.Kind) {
	m.events.WithLabelValues(k.String()).Inc()
}

// WatchCounter exports a monotonically increasing value read at scrape time,
// e.g. the collision queue's drop count. fn runs on the scrape goroutine and
// must be safe for concurrent use.
func (m *Metrics) WatchCounter(name, help string, fn func() float64) {
	m.reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// SampleGauge exports a value of simulation state, e.g. live entity count.
// fn is called after every frame on the simulation goroutine, never at
// scrape time; register samples before the loop starts.
func (m *Metrics) SampleGauge(name, help string, fn func() float64) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	m.reg.MustRegister(g)
	m.samples = append(m.samples, sample{gauge: g, read: fn})
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
