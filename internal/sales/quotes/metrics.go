package quotes

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts quote lifecycle events.
type Metrics struct {
	transitions *prometheus.CounterVec
	receipts    prometheus.Counter
}

// NewMetrics registers the quote collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amexing_quote_transitions_total",
			Help: "Quote status transitions.",
		}, []string{"from", "to"}),
		receipts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "amexing_quote_receipts_total",
			Help: "Receipt PDFs generated.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.receipts)
	}
	return m
}

func (m *Metrics) transition(from, to Status) {
	if m != nil {
		m.transitions.WithLabelValues(string(from), string(to)).Inc()
	}
}

func (m *Metrics) receipt() {
	if m != nil {
		m.receipts.Inc()
	}
}
