// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-interview-telemetry-service/internal/models"
	"ai-interview-telemetry-service/internal/observability/metrics"
)

// AnswerRecordedEvent is emitted after each answer is scored and persisted.
type AnswerRecordedEvent struct {
	InterviewID string    `json:"interviewId"`
	QuestionID  int       `json:"questionId"`
	SequenceID  int       `json:"sequenceId"`
	Rating      float64   `json:"ratingAverage"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// SessionCompletedEvent is emitted once when a session finishes.
type SessionCompletedEvent struct {
	InterviewID    string                    `json:"interviewId"`
	Answers        int                       `json:"answers"`
	OverallScore   float64                   `json:"overallScore"`
	NonverbalScore float64                   `json:"nonVerbalScore,omitempty"`
	Nonverbal      *models.NonverbalFeedback `json:"nonVerbal,omitempty"`
	CompletedAt    time.Time                 `json:"completedAt"`
}

// Publisher publishes session events to separate Kafka topics.
type Publisher struct {
	writerAnswers *kafka.Writer
	writerDone    *kafka.Writer
	principal     string
	topicAnswers  string
	topicDone     string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicAnswers string
	TopicDone    string
	Principal    string
	Enabled      bool
}

// New creates a Kafka event publisher with separate topics for per-answer
// and session-completed events. With Kafka disabled it degrades to log-only.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicAnswers: cfg.TopicAnswers,
			topicDone:    cfg.TopicDone,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerAnswers := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicAnswers,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerDone := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicDone,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicAnswers", cfg.TopicAnswers).
		Str("topicDone", cfg.TopicDone).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerAnswers: writerAnswers,
		writerDone:    writerDone,
		principal:     cfg.Principal,
		topicAnswers:  cfg.TopicAnswers,
		topicDone:     cfg.TopicDone,
		enabled:       true,
		metrics:       m,
	}
}

// PublishAnswerRecorded publishes a per-answer event keyed by interview ID.
func (p *Publisher) PublishAnswerRecorded(ctx context.Context, event AnswerRecordedEvent) error {
	return p.publish(ctx, p.writerAnswers, p.topicAnswers, "answer", event.InterviewID, event)
}

// PublishSessionCompleted publishes the session-completed event.
func (p *Publisher) PublishSessionCompleted(ctx context.Context, event SessionCompletedEvent) error {
	return p.publish(ctx, p.writerDone, p.topicDone, "completed", event.InterviewID, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerAnswers != nil {
		if e := p.writerAnswers.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing answers writer")
			err = e
		}
	}
	if p.writerDone != nil {
		if e := p.writerDone.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing done writer")
			err = e
		}
	}
	return err
}
