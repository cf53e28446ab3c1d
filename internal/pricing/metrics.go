package pricing

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts adjustment writes per kind.
type Metrics struct {
	created *prometheus.CounterVec
	deleted *prometheus.CounterVec
}

// NewMetrics registers the pricing collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amexing_price_adjustments_created_total",
			Help: "Price adjustments created, by kind.",
		}, []string{"kind"}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amexing_price_adjustments_deleted_total",
			Help: "Historical price adjustments soft deleted, by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.created, m.deleted)
	}
	return m
}

func (m *Metrics) recordCreated(kind Kind) {
	if m != nil {
		m.created.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) recordDeleted(kind Kind) {
	if m != nil {
		m.deleted.WithLabelValues(string(kind)).Inc()
	}
}
