package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the storefront's Prometheus collectors.
type Metrics struct {
	PageRenders        *prometheus.CounterVec
	GateDecisions      *prometheus.CounterVec
	AdminListFailures  prometheus.Counter
	ProductsCreated    prometheus.Counter
	BufferedOperations prometheus.Gauge
}

// New registers all collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PageRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_page_renders_total",
			Help: "Total number of rendered pages by page and status code",
		}, []string{"page", "status"}),
		GateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_session_gate_decisions_total",
			Help: "Session gate outcomes (allowed, anonymous, error)",
		}, []string{"outcome"}),
		AdminListFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_admin_user_list_failures_total",
			Help: "Total number of failed identity provider user listings",
		}),
		ProductsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_products_created_total",
			Help: "Total number of products created from the admin panel",
		}),
		BufferedOperations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_buffered_operations",
			Help: "Operations waiting in the offline buffer",
		}),
	}
}

func (m *Metrics) ObservePage(page string, status int) {
	if m == nil {
		return
	}
	m.PageRenders.WithLabelValues(page, statusLabel(status)).Inc()
}

func (m *Metrics) ObserveGate(outcome string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementAdminListFailures() {
	if m == nil {
		return
	}
	m.AdminListFailures.Inc()
}

func (m *Metrics) IncrementProductsCreated() {
	if m == nil {
		return
	}
	m.ProductsCreated.Inc()
}

func (m *Metrics) SetBufferedOperations(count int) {
	if m == nil {
		return
	}
	m.BufferedOperations.Set(float64(count))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
