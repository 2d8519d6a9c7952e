package mbim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the optional Prometheus instrumentation for an mbim
// TransactionManager and Reassembler. A nil *Metrics is safe to use:
// every method is a no-op on a nil receiver.
type Metrics struct {
	TransactionsInserted prometheus.Counter
	TransactionsReplied  prometheus.Counter
	TransactionsTimedOut prometheus.Counter
	TransactionsPending  prometheus.Gauge
	FragmentsReassembled prometheus.Counter
	FragmentErrors       *prometheus.CounterVec
}

// NewMetrics registers mbim metrics against reg and returns the
// instrumentation handle. Pass nil for reg to disable metrics entirely.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mbim_transactions_inserted_total",
			Help: "Total number of MBIM transactions inserted into the pending table.",
		}),
		TransactionsReplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "mbim_transactions_replied_total",
			Help: "Total number of MBIM transactions resolved by a matching reply.",
		}),
		TransactionsTimedOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "mbim_transactions_timed_out_total",
			Help: "Total number of MBIM transactions that timed out waiting for a reply.",
		}),
		TransactionsPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mbim_transactions_pending",
			Help: "Current number of in-flight MBIM transactions.",
		}),
		FragmentsReassembled: factory.NewCounter(prometheus.CounterOpts{
			Name: "mbim_fragments_reassembled_total",
			Help: "Total number of MBIM messages completed by fragment reassembly.",
		}),
		FragmentErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mbim_fragment_errors_total",
			Help: "Total number of MBIM fragment reassembly errors by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) recordFragmentError(reason string) {
	if m == nil {
		return
	}
	m.FragmentErrors.WithLabelValues(reason).Inc()
}
