// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_interview_telemetry"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Telemetry stream metrics
	TelemetryConnects   prometheus.Counter
	TelemetryReconnects prometheus.Counter
	TelemetryOpen       prometheus.Gauge
	FramesSent          prometheus.Counter
	FramesSkipped       *prometheus.CounterVec
	FrameBytesSent      prometheus.Counter
	RepliesReceived     prometheus.Counter
	RepliesMalformed    prometheus.Counter

	// Aggregation metrics
	TransitionsRecorded *prometheus.CounterVec

	// Session metrics
	SessionsStarted      prometheus.Counter
	SessionsCompleted    prometheus.Counter
	SessionsErrored      prometheus.Counter
	AnswersRecorded      prometheus.Counter
	ValidationRejections *prometheus.CounterVec
	RecordingToggles     prometheus.Counter

	// External collaborator metrics
	CollaboratorCalls   *prometheus.CounterVec
	CollaboratorErrors  *prometheus.CounterVec
	CollaboratorLatency *prometheus.HistogramVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TelemetryConnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_connects_total",
			Help:      "Total number of successful classifier connections",
		}),
		TelemetryReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_reconnects_total",
			Help:      "Total number of scheduled reconnect attempts",
		}),
		TelemetryOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "telemetry_connection_open",
			Help:      "1 while the classifier connection is open, 0 otherwise",
		}),
		FramesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Total number of video frames sent to the classifier",
		}),
		FramesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Total number of capture ticks skipped",
		}, []string{"reason"}),
		FrameBytesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_bytes_sent_total",
			Help:      "Total encoded frame bytes sent to the classifier",
		}),
		RepliesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_replies_total",
			Help:      "Total number of classifier replies received",
		}),
		RepliesMalformed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_replies_malformed_total",
			Help:      "Total number of classifier replies discarded as non-conforming",
		}),

		TransitionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total number of classified-state transitions recorded",
		}, []string{"category"}),

		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of interview sessions started",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Total number of interview sessions completed",
		}),
		SessionsErrored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_errored_total",
			Help:      "Total number of interview sessions that ended in error",
		}),
		AnswersRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_recorded_total",
			Help:      "Total number of answers persisted",
		}),
		ValidationRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Total number of advance/submit calls rejected by validation",
		}, []string{"reason"}),
		RecordingToggles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recording_toggles_total",
			Help:      "Total number of recording start/stop toggles",
		}),

		CollaboratorCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_calls_total",
			Help:      "Total number of external collaborator calls",
		}, []string{"collaborator"}),
		CollaboratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Total number of failed external collaborator calls",
		}, []string{"collaborator"}),
		CollaboratorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_latency_seconds",
			Help:      "External collaborator call latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"collaborator"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordConnect records a successful classifier connection.
func (m *Metrics) RecordConnect() {
	m.TelemetryConnects.Inc()
	m.TelemetryOpen.Set(1)
}

// RecordDisconnect records the classifier connection closing.
func (m *Metrics) RecordDisconnect() {
	m.TelemetryOpen.Set(0)
}

// RecordReconnectScheduled records a reconnect attempt being scheduled.
func (m *Metrics) RecordReconnectScheduled() {
	m.TelemetryReconnects.Inc()
}

// RecordFrameSent records one outbound frame.
func (m *Metrics) RecordFrameSent(bytes int) {
	m.FramesSent.Inc()
	m.FrameBytesSent.Add(float64(bytes))
}

// RecordFrameSkipped records a capture tick skipped for the given reason.
func (m *Metrics) RecordFrameSkipped(reason string) {
	m.FramesSkipped.WithLabelValues(reason).Inc()
}

// RecordReply records an inbound classifier reply.
func (m *Metrics) RecordReply(malformed bool) {
	m.RepliesReceived.Inc()
	if malformed {
		m.RepliesMalformed.Inc()
	}
}

// RecordTransition records one counted state transition for a category.
func (m *Metrics) RecordTransition(category string) {
	m.TransitionsRecorded.WithLabelValues(category).Inc()
}

// RecordValidationRejection records a rejected advance/submit.
func (m *Metrics) RecordValidationRejection(reason string) {
	m.ValidationRejections.WithLabelValues(reason).Inc()
}

// RecordCollaboratorCall records an external collaborator call outcome.
func (m *Metrics) RecordCollaboratorCall(collaborator string, err error, latencySeconds float64) {
	m.CollaboratorCalls.WithLabelValues(collaborator).Inc()
	m.CollaboratorLatency.WithLabelValues(collaborator).Observe(latencySeconds)
	if err != nil {
		m.CollaboratorErrors.WithLabelValues(collaborator).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
