package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Throughput metrics - Track operation volume
var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_operations_total",
			Help: "Total number of token operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	TransactionsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokengate_transactions_persisted_total",
		Help: "Total number of transaction records written to the ledger store",
	})
)

// Performance metrics - Track latency
var (
	SagaDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokengate_saga_duration_seconds",
			Help:    "End-to-end time for one token operation saga",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CustodyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokengate_custody_request_duration_seconds",
			Help:    "Time taken by individual custody API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// Error metrics - Track failures
var (
	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_stage_failures_total",
			Help: "Total number of saga stage failures by stage",
		},
		[]string{"stage"},
	)

	// Failures after the custody service has accepted work the local
	// ledger cannot account for. Operators reconcile these manually.
	ReconciliationRisk = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_reconciliation_risk_total",
			Help: "Failures that left a custody transaction without a settled local record",
		},
		[]string{"stage"},
	)
)
