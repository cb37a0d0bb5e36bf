package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	Deposits          prometheus.Counter
	Withdrawals       prometheus.Counter
	Transfers         prometheus.Counter
	TransactionAmount *prometheus.HistogramVec
	PolicyRejections  *prometheus.CounterVec

	// Step-up metrics
	ChallengesIssued   prometheus.Counter
	ChallengesVerified *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Audit metrics
	AuditWriteFailures prometheus.Counter
}

// New creates all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all Prometheus metrics on reg. Tests pass a fresh
// registry so repeated construction never collides.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Transaction metrics
		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "kodbank_deposits_total",
			Help: "Total number of committed deposits",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "kodbank_withdrawals_total",
			Help: "Total number of committed withdrawals",
		}),
		Transfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "kodbank_transfers_total",
			Help: "Total number of committed transfers",
		}),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kodbank_transaction_amount",
				Help:    "Committed transaction amounts",
				Buckets: []float64{100, 500, 1000, 5000, 10000, 20000, 50000},
			},
			[]string{"kind"},
		),
		PolicyRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kodbank_policy_rejections_total",
				Help: "Total transactions rejected by policy, by reason",
			},
			[]string{"reason"},
		),

		// Step-up metrics
		ChallengesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "kodbank_challenges_issued_total",
			Help: "Total step-up challenges issued",
		}),
		ChallengesVerified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kodbank_challenges_verified_total",
				Help: "Total step-up challenge verifications by outcome",
			},
			[]string{"outcome"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kodbank_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kodbank_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kodbank_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Audit metrics
		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kodbank_audit_write_failures_total",
			Help: "Total audit entries that could not be written",
		}),
	}
}
