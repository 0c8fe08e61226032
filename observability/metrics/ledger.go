package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	instructionsApplied *prometheus.CounterVec
	eventsEmitted       prometheus.Counter
	totalStaked         prometheus.Gauge
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide instruction metrics, registering them on
// first use.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			instructionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_instructions_total",
				Help: "Count of dispatched instructions by operation and result.",
			}, []string{"op", "result"}),
			eventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_events_emitted_total",
				Help: "Count of events emitted by committed instructions.",
			}),
			totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_governance_total_staked",
				Help: "Running sum of staked principal in base units.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.instructionsApplied,
			ledgerRegistry.eventsEmitted,
			ledgerRegistry.totalStaked,
		)
	})
	return ledgerRegistry
}

// ObserveInstruction records one dispatched instruction outcome.
func (m *LedgerMetrics) ObserveInstruction(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.instructionsApplied.WithLabelValues(op, result).Inc()
}

// ObserveEvent records one emitted event.
func (m *LedgerMetrics) ObserveEvent() {
	if m == nil {
		return
	}
	m.eventsEmitted.Inc()
}

// SetTotalStaked mirrors the governance staked sum for dashboards.
func (m *LedgerMetrics) SetTotalStaked(total float64) {
	if m == nil {
		return
	}
	m.totalStaked.Set(total)
}
