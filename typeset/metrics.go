package typeset

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the scheduler's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	Batches        prometheus.Counter
	Mutations      *prometheus.CounterVec
	Invalidated    prometheus.Counter
	StaleNodes     prometheus.Counter
	DirtyNodes     prometheus.Histogram
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
}

// NewMetrics registers the scheduler collectors with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "batches_total",
			Help:      "Change batches processed while observing",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "mutations_total",
			Help:      "Change notifications received, by kind",
		}, []string{"kind"}),
		Invalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "invalidated_nodes_total",
			Help:      "Nodes whose render cache was cleared",
		}),
		StaleNodes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "stale_nodes_total",
			Help:      "Dirty nodes dropped because they were detached",
		}),
		DirtyNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "dirty_nodes",
			Help:      "Size of the dirty set handed to each render",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		Renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "renders_total",
			Help:      "Settled renders, by result",
		}, []string{"result"}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "typeset",
			Name:      "render_duration_seconds",
			Help:      "Render duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeBatch(res batchResult) {
	if m == nil {
		return
	}
	m.Batches.Inc()
	for kind, n := range res.mutations {
		label := kind.String()
		if kind < NodesAdded || kind > TextChanged {
			label = "unknown"
		}
		m.Mutations.WithLabelValues(label).Add(float64(n))
	}
	m.Invalidated.Add(float64(res.invalidated))
	m.StaleNodes.Add(float64(res.stale))
	if len(res.nodes) > 0 {
		m.DirtyNodes.Observe(float64(len(res.nodes)))
	}
}

func (m *Metrics) observeRender(c Cycle) {
	if m == nil {
		return
	}
	result := "ok"
	if c.Err != nil {
		result = "error"
	}
	m.Renders.WithLabelValues(result).Inc()
	m.RenderDuration.Observe(c.Duration.Seconds())
}
