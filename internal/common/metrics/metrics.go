// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of submissions evaluated, by verdict",
		},
		[]string{"verdict", "source"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "evaluation_duration_seconds",
			Help: "Duration of full settlement runs in seconds",
		},
		[]string{"source"},
	)

	TierAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluator_tier_attempts_total",
			Help: "Evaluation attempts per tier, by outcome",
		},
		[]string{"tier", "outcome"},
	)

	PayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_total",
			Help: "Payout attempts by final status",
		},
		[]string{"status"},
	)

	PayoutAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_amount_usdc_total",
			Help: "Cumulative USDC authorized for payouts",
		},
		[]string{"status"},
	)

	TreasuryNetBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "treasury_net_balance_usdc",
			Help: "Current treasury net balance in USDC",
		},
	)

	SecurityAuditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "security_audits_total",
			Help: "Security oracle audits commissioned",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)
