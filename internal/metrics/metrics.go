// Package metrics exposes prometheus collectors for mutations and persistence.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Mutations       *prometheus.CounterVec
	Entities        *prometheus.GaugeVec
	Persists        *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portmap",
			Name:      "mutations_total",
			Help:      "Document mutations by operation and result.",
		}, []string{"op", "result"}),
		Entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "portmap",
			Name:      "documents_entities",
			Help:      "Number of entities per collection in the current document.",
		}, []string{"collection"}),
		Persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portmap",
			Name:      "persist_total",
			Help:      "Document writes to the backing store by result.",
		}, []string{"result"}),
		PersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portmap",
			Name:      "persist_duration_seconds",
			Help:      "Time spent writing the document to the backing store.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.Entities, m.Persists, m.PersistDuration)
	}
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveMutation(op string, err error) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObservePersist(start time.Time, err error) {
	if m == nil {
		return
	}
	m.Persists.WithLabelValues(result(err)).Inc()
	m.PersistDuration.Observe(time.Since(start).Seconds())
}

// SetEntities records collection sizes.
func (m *Metrics) SetEntities(counts map[string]int) {
	if m == nil {
		return
	}
	for collection, n := range counts {
		m.Entities.WithLabelValues(collection).Set(float64(n))
	}
}
