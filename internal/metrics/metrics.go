// Package metrics provides Prometheus metrics for the HyperTask client.
// Counters, gauges, and histograms for projects, escrow, the wallet,
// and backend calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Projects ───────────────────────────────────────────────────────────────

// ProjectsStarted counts dispatched projects.
var ProjectsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hypertask",
	Name:      "projects_started_total",
	Help:      "Total projects dispatched.",
})

// ProjectsCompleted counts approved projects.
var ProjectsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hypertask",
	Name:      "projects_completed_total",
	Help:      "Total projects approved and paid.",
})

// ProjectsRejected counts rejected projects.
var ProjectsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hypertask",
	Name:      "projects_rejected_total",
	Help:      "Total projects rejected and refunded.",
})

// PipelineStageSeconds tracks per-stage pipeline duration.
var PipelineStageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "hypertask",
	Name:      "pipeline_stage_seconds",
	Help:      "Execution pipeline stage duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"stage"})

// ─── Wallet & Escrow ────────────────────────────────────────────────────────

// WalletBalance tracks the current total balance.
var WalletBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "hypertask",
	Name:      "wallet_balance_hyper",
	Help:      "Current wallet total in HYPER.",
})

// EscrowLocked tracks the currently escrowed amount.
var EscrowLocked = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "hypertask",
	Name:      "escrow_locked_hyper",
	Help:      "Currently escrowed amount in HYPER.",
})

// Deposits counts wallet deposits.
var Deposits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hypertask",
	Name:      "wallet_deposits_total",
	Help:      "Total wallet deposits.",
})

// FeesBurned accumulates burn fees charged at release.
var FeesBurned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hypertask",
	Name:      "fees_burned_hyper_total",
	Help:      "Cumulative burn fees in HYPER.",
})

// ─── Backend ────────────────────────────────────────────────────────────────

// BackendLatency tracks backend request duration by endpoint.
var BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "hypertask",
	Name:      "backend_latency_seconds",
	Help:      "Backend API request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"endpoint"})

// BackendFallbacks counts executions served by the canned demo path.
var BackendFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hypertask",
	Name:      "backend_fallbacks_total",
	Help:      "Executions that fell back to demo deliverables.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus reports each health check (1 healthy, 0 not).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "hypertask",
	Name:      "health_check_status",
	Help:      "Health check status (1 = healthy).",
}, []string{"check"})
