package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registrations counts registration attempts by final disposition
	// (approved_student|approved_outsider|login_student|login_outsider|pending|invalid_referral|error).
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valentine_registrations_total",
			Help: "Total number of registration attempts by disposition",
		},
		[]string{"disposition"},
	)

	// ReferralRedemptions counts redemption attempts and their outcome (success|exhausted|invalid|self).
	ReferralRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valentine_referral_redemptions_total",
			Help: "Total number of referral redemption attempts",
		},
		[]string{"result"},
	)

	// ApprovalResolutions counts manual approvals and rejections (approved|rejected|already_resolved).
	ApprovalResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valentine_approval_resolutions_total",
			Help: "Total number of manual approval resolutions",
		},
		[]string{"result"},
	)

	// SideEffectFailures counts best-effort side effects that failed (sheet|telegram|email).
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valentine_side_effect_failures_total",
			Help: "Total number of failed fire-and-forget side effects",
		},
		[]string{"channel"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "valentine_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
