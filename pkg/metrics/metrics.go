// Package metrics turns replay results into Prometheus metrics. The CLI is
// a one-shot process, so the registry is written to a node_exporter
// textfile rather than served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chazu/lignin-replay/pkg/importer"
)

const namespace = "lignin_replay"

// Collector holds the replay metrics in a private registry.
type Collector struct {
	registry *prometheus.Registry

	Runs           *prometheus.CounterVec
	Entities       *prometheus.CounterVec
	Profiles       *prometheus.CounterVec
	EntityDuration *prometheus.HistogramVec
	Bodies         prometheus.Gauge
	LastRun        prometheus.Gauge
}

// NewCollector creates and registers the replay metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Replay runs by status.",
			},
			[]string{"status"},
		),
		Entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entities_total",
				Help:      "Timeline entities processed by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		Profiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profiles_total",
				Help:      "Recorded profiles by match result.",
			},
			[]string{"result"},
		),
		EntityDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "entity_duration_seconds",
				Help:      "Time spent reconstructing one entity.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"type"},
		),
		Bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bodies",
			Help:      "Bodies in the document after the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	c.registry.MustRegister(c.Runs, c.Entities, c.Profiles, c.EntityDuration, c.Bodies, c.LastRun)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records one run. res may be partial; runErr is the error the
// run returned.
func (c *Collector) Observe(res *importer.Result, runErr error, bodies int) {
	status := "ok"
	if runErr != nil {
		status = "failed"
	}
	c.Runs.WithLabelValues(status).Inc()
	c.Bodies.Set(float64(bodies))
	c.LastRun.Set(float64(time.Now().Unix()))

	if res == nil {
		return
	}
	for _, o := range res.Entities {
		outcome := "ok"
		switch {
		case o.Err != nil:
			outcome = "failed"
		case o.Skipped:
			outcome = "skipped"
		}
		typ := o.Type
		if typ == "" {
			typ = "unknown"
		}
		c.Entities.WithLabelValues(typ, outcome).Inc()
		if !o.Skipped {
			c.EntityDuration.WithLabelValues(typ).Observe(o.Duration.Seconds())
		}
		if o.Profiles > 0 {
			c.Profiles.WithLabelValues("matched").Add(float64(o.Profiles - o.Unmatched))
			c.Profiles.WithLabelValues("unmatched").Add(float64(o.Unmatched))
		}
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
