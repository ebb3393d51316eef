// Package metrics declares the Prometheus collectors of the sale server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionsTotal counts admission attempts by result: "admitted",
	// "unconfirmed", "denied", "ledger_rejected" or "error".
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_admissions_total",
			Help: "Total number of admission attempts by result",
		},
		[]string{"result"},
	)

	// DenialsTotal counts admission denials by reason code (0x1..0x5).
	DenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_denials_total",
			Help: "Total number of admission denials by reason code",
		},
		[]string{"code"},
	)

	// LedgerIssueDuration tracks the latency of ledger issuance calls
	LedgerIssueDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sale_ledger_issue_duration_seconds",
			Help:    "Ledger issuance duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// TotalAdmitted mirrors the global admission counter
	TotalAdmitted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sale_total_admitted",
			Help: "Units admitted over the lifetime of the controller",
		},
	)

	// TreasuryBalance tracks the undistributed treasury in native units
	TreasuryBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sale_treasury_balance",
			Help: "Current treasury balance",
		},
	)

	// WithdrawalsTotal counts treasury withdrawals by status
	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_withdrawals_total",
			Help: "Total number of treasury withdrawals by status",
		},
		[]string{"status"},
	)

	// EventsPublished counts notifications by kind and publish status
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_events_published_total",
			Help: "Total number of notifications published by kind and status",
		},
		[]string{"kind", "status"},
	)

	// RequestsTotal counts service operations by method and error category
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_requests_total",
			Help: "Total number of service operations by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// GasUsed tracks gas used for Ethereum transactions
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sale_gas_used",
			Help:    "Gas used for Ethereum transactions",
			Buckets: []float64{21000, 50000, 100000, 200000, 300000, 500000},
		},
		[]string{"operation"},
	)
)
