package qmi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the optional Prometheus instrumentation for a qmi
// TransactionManager and Registry. A nil *Metrics is safe to use.
type Metrics struct {
	TransactionsInserted prometheus.Counter
	TransactionsReplied  prometheus.Counter
	TransactionsTimedOut prometheus.Counter
	TransactionsPending  prometheus.Gauge
	ClientsAllocated     *prometheus.CounterVec
	ClientsReleased      *prometheus.CounterVec
	ClientsActive        prometheus.Gauge
}

// NewMetrics registers qmi metrics against reg. Pass nil to disable.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "qmi_transactions_inserted_total",
			Help: "Total number of QMI transactions inserted into the pending table.",
		}),
		TransactionsReplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "qmi_transactions_replied_total",
			Help: "Total number of QMI transactions resolved by a matching reply.",
		}),
		TransactionsTimedOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "qmi_transactions_timed_out_total",
			Help: "Total number of QMI transactions that timed out waiting for a reply.",
		}),
		TransactionsPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "qmi_transactions_pending",
			Help: "Current number of in-flight QMI transactions.",
		}),
		ClientsAllocated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qmi_clients_allocated_total",
			Help: "Total number of client ids allocated per service.",
		}, []string{"service"}),
		ClientsReleased: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qmi_clients_released_total",
			Help: "Total number of client ids released per service.",
		}, []string{"service"}),
		ClientsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "qmi_clients_active",
			Help: "Current number of allocated client ids across all services.",
		}),
	}
}

func (m *Metrics) recordAllocated(service Service) {
	if m == nil {
		return
	}
	m.ClientsAllocated.WithLabelValues(service.String()).Inc()
	m.ClientsActive.Inc()
}

func (m *Metrics) recordReleased(service Service) {
	if m == nil {
		return
	}
	m.ClientsReleased.WithLabelValues(service.String()).Inc()
	m.ClientsActive.Dec()
}
