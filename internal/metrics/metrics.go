package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ComplaintMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complaint_desk",
		Name:      "complaint_mutations_total",
		Help:      "Complaint mutations by action",
	}, []string{"action"})

	AuditSinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complaint_desk",
		Name:      "audit_sink_failures_total",
		Help:      "Audit events that a sink failed to record",
	}, []string{"sink"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complaint_desk",
		Name:      "stats_cache_lookups_total",
		Help:      "Aggregate cache lookups by cache key and result (hit or miss)",
	}, []string{"cache", "result"})

	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complaint_desk",
		Name:      "auth_attempts_total",
		Help:      "Login and registration attempts by kind and outcome",
	}, []string{"kind", "outcome"})
)
