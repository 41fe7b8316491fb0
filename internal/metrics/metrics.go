package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcomes
const (
	OutcomeProcessed     = "processed"
	OutcomeUnknownTenant = "unknown_tenant"
	OutcomeUnknownKind   = "unknown_kind"
	OutcomeRejected      = "rejected"
	OutcomeFailed        = "failed"
)

type Metrics struct {
	Registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Webhook Metrics
	WebhookEvents     *prometheus.CounterVec
	SignatureFailures prometheus.Counter
	TenantCacheLookup *prometheus.CounterVec

	// Messaging Metrics
	RepliesTotal     *prometheus.CounterVec
	ReplyDuration    *prometheus.HistogramVec
	StatusUpdates    *prometheus.CounterVec
	MessagesRecorded *prometheus.CounterVec
	InboundIntents   *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry, so each instance
// can be created independently
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinicbot_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "clinicbot_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_webhook_events_total",
				Help: "Webhook events by normalized kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		SignatureFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "clinicbot_webhook_signature_failures_total",
				Help: "Webhook events rejected by signature verification",
			},
		),
		TenantCacheLookup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_tenant_lookups_total",
				Help: "Tenant resolutions by result",
			},
			[]string{"result"},
		),

		RepliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_replies_total",
				Help: "Bot replies by transport driver and status",
			},
			[]string{"driver", "status"},
		),
		ReplyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinicbot_reply_send_duration_seconds",
				Help:    "Duration of outbound transport calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"driver"},
		),
		StatusUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_status_updates_total",
				Help: "Delivery status updates by target status and result",
			},
			[]string{"status", "result"},
		),
		MessagesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_messages_recorded_total",
				Help: "Message records created by direction",
			},
			[]string{"direction"},
		),
		InboundIntents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicbot_inbound_intents_total",
				Help: "Inbound patient messages by detected intent",
			},
			[]string{"intent"},
		),
	}
}

// --- Recording Methods ---

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordWebhookEvent(kind, outcome string) {
	m.WebhookEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordSignatureFailure() {
	m.SignatureFailures.Inc()
}

func (m *Metrics) RecordTenantLookup(result string) {
	m.TenantCacheLookup.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordReply(driver, status string, duration time.Duration) {
	m.RepliesTotal.WithLabelValues(driver, status).Inc()
	m.ReplyDuration.WithLabelValues(driver).Observe(duration.Seconds())
}

func (m *Metrics) RecordStatusUpdate(status, result string) {
	m.StatusUpdates.WithLabelValues(status, result).Inc()
}

func (m *Metrics) RecordMessage(direction string) {
	m.MessagesRecorded.WithLabelValues(direction).Inc()
}

func (m *Metrics) RecordIntent(intent string) {
	if intent == "" {
		intent = "none"
	}
	m.InboundIntents.WithLabelValues(intent).Inc()
}
