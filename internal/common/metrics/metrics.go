// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnswersResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_answers_total",
			Help: "Total number of answers resolved, by outcome",
		},
		[]string{"outcome"},
	)

	StoreLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "responder_store_lookup_duration_seconds",
			Help:    "Duration of intent store lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "result"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_cache_requests_total",
			Help: "Intent record cache lookups, by result",
		},
		[]string{"result"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_messages_sent_total",
			Help: "Send API calls, by status",
		},
		[]string{"status"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_webhook_events_total",
			Help: "Inbound webhook deliveries, by disposition",
		},
		[]string{"disposition"},
	)

	OperatorAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_operator_alerts_total",
			Help: "Operator alerts published, by channel and status",
		},
		[]string{"channel", "status"},
	)

	AuditDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_audit_documents_total",
			Help: "Interaction audit documents, by status",
		},
		[]string{"status"},
	)
)
