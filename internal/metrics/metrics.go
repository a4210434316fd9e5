// Package metrics exposes Prometheus instruments for ledger activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitsmart"

// Metrics holds the service instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	expenses    *prometheus.CounterVec
	settlements prometheus.Counter
	rejected    *prometheus.CounterVec
	ledgerSize  prometheus.Histogram
	gatherer    prometheus.Gatherer
}

// New registers the instruments on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		expenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_applied_total",
			Help:      "Expenses folded into a group ledger, by split policy.",
		}, []string{"policy"}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Payments recorded between group members.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_rejections_total",
			Help:      "Expenses rejected by split validation, by requested selector.",
		}, []string{"selector"}),
		ledgerSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_debts",
			Help:      "Number of directed debts left in a group ledger after collapse.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.expenses, m.settlements, m.rejected, m.ledgerSize)

	return m
}

// ExpenseApplied counts a recorded expense.
func (m *Metrics) ExpenseApplied(policy string) {
	if m == nil {
		return
	}
	m.expenses.WithLabelValues(policy).Inc()
}

// SettlementRecorded counts a recorded payment.
func (m *Metrics) SettlementRecorded() {
	if m == nil {
		return
	}
	m.settlements.Inc()
}

// SplitRejected counts a split validation failure. Unknown selectors are
// bucketed together to bound label cardinality.
func (m *Metrics) SplitRejected(selector string, known bool) {
	if m == nil {
		return
	}
	if !known {
		selector = "unknown"
	}
	m.rejected.WithLabelValues(selector).Inc()
}

// ObserveLedger records the size of a collapsed ledger.
func (m *Metrics) ObserveLedger(debts int) {
	if m == nil {
		return
	}
	m.ledgerSize.Observe(float64(debts))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
