// Package metrics exposes transfer and frame counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/junsooki/renderlink/internal/transport"
)

const namespace = "renderlink"

// Collectors implements transport.Observer. A nil *Collectors records nothing.
type Collectors struct {
	bytesTotal      *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	framesTotal     *prometheus.CounterVec
	frameDuration   *prometheus.HistogramVec
	reconnectsTotal prometheus.Counter
	fps             prometheus.Gauge
	samples         prometheus.Gauge
}

var _ transport.Observer = (*Collectors)(nil)

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_bytes_total",
			Help:      "Bytes moved over session channels.",
		}, []string{"channel", "direction"}),

		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Data-plane failures that set the sticky connection error.",
		}, []string{"channel"}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames served or received.",
		}, []string{"role"}),

		frameDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall time of one frame exchange.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"role"}),

		reconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Session re-establishments after a connection error.",
		}),

		fps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "local_fps",
			Help:      "Frames per second over the last measurement window.",
		}),

		samples: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples",
			Help:      "Accumulated samples of the current frame.",
		}),
	}
}

func (c *Collectors) ObserveTransfer(kind transport.Kind, dir transport.Direction, n int) {
	if c == nil {
		return
	}
	c.bytesTotal.WithLabelValues(kind.String(), string(dir)).Add(float64(n))
}

func (c *Collectors) ObserveFailure(kind transport.Kind, _ error) {
	if c == nil {
		return
	}
	c.failuresTotal.WithLabelValues(kind.String()).Inc()
}

// ObserveFrame records one completed frame for role ("server" or "client").
func (c *Collectors) ObserveFrame(role string, d time.Duration) {
	if c == nil {
		return
	}
	c.framesTotal.WithLabelValues(role).Inc()
	c.frameDuration.WithLabelValues(role).Observe(d.Seconds())
}

func (c *Collectors) ObserveReconnect() {
	if c == nil {
		return
	}
	c.reconnectsTotal.Inc()
}

func (c *Collectors) SetFPS(fps float64) {
	if c == nil {
		return
	}
	c.fps.Set(fps)
}

func (c *Collectors) SetSamples(n int) {
	if c == nil {
		return
	}
	c.samples.Set(float64(n))
}
