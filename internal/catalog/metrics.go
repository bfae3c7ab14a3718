package catalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts catalog outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Added              prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	PersistFailures    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "products_added_total",
			Help:      "Products committed through the add-product flow",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "validation_failures_total",
			Help:      "Rejected form fields",
		}, []string{"field"}),
		PersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "persistence_failures_total",
			Help:      "Failed storage operations",
		}, []string{"op"}),
	}

	reg.MustRegister(m.Added, m.ValidationFailures, m.PersistFailures)
	return m
}

func (m *Metrics) added() {
	if m != nil {
		m.Added.Inc()
	}
}

func (m *Metrics) rejected(fields []FieldError) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.ValidationFailures.WithLabelValues(f.Field).Inc()
	}
}

func (m *Metrics) persistFailed(op string) {
	if m != nil {
		m.PersistFailures.WithLabelValues(op).Inc()
	}
}
