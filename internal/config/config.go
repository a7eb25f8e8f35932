// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig identifies the service instance.
type ServiceConfig struct {
	Name      string
	Principal string
	HTTPPort  string
}

// TelemetryConfig controls the streaming telemetry client.
type TelemetryConfig struct {
	ClassifierURL       string
	CaptureInterval     time.Duration
	FrameWidth          int
	FrameHeight         int
	ReconnectInitial    time.Duration
	ReconnectMax        time.Duration
	ReconnectMultiplier float64
}

// SessionConfig controls the interview session controller.
type SessionConfig struct {
	UserID        string
	Domain        string
	Level         string
	QuestionCount int
	SettleDelay   time.Duration
	STTProvider   string // mock, google
}

// CollabConfig locates the external collaborators.
type CollabConfig struct {
	AIBaseURL        string // question source + feedback scoring service
	InterviewBaseURL string // session persistence service
	Timeout          time.Duration
}

// KafkaConfig controls the interview event publisher.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicAnswers string
	TopicDone    string
	Principal    string
}

// ObservabilityConfig controls logging and the metrics endpoint.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Telemetry     TelemetryConfig
	Session       SessionConfig
	Collab        CollabConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, falling back to defaults on
// missing or invalid values.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-interview-telemetry")

	return &Configuration{
		Service: ServiceConfig{
			Name:      "ai-interview-telemetry-service",
			Principal: principal,
			HTTPPort:  envOrDefault("HTTP_PORT", "4100"),
		},
		Telemetry: TelemetryConfig{
			ClassifierURL:       envOrDefault("CLASSIFIER_WS_URL", "ws://localhost:8000/ws"),
			CaptureInterval:     envOrDefaultDuration("CAPTURE_INTERVAL", 100*time.Millisecond),
			FrameWidth:          envOrDefaultInt("FRAME_WIDTH", 640),
			FrameHeight:         envOrDefaultInt("FRAME_HEIGHT", 480),
			ReconnectInitial:    envOrDefaultDuration("RECONNECT_INITIAL", 500*time.Millisecond),
			ReconnectMax:        envOrDefaultDuration("RECONNECT_MAX", 10*time.Second),
			ReconnectMultiplier: envOrDefaultFloat("RECONNECT_MULTIPLIER", 1.5),
		},
		Session: SessionConfig{
			UserID:        envOrDefault("INTERVIEW_USER_ID", "local-user"),
			Domain:        envOrDefault("INTERVIEW_DOMAIN", "python"),
			Level:         envOrDefault("INTERVIEW_LEVEL", "beginner"),
			QuestionCount: envOrDefaultInt("INTERVIEW_QUESTIONS", 3),
			SettleDelay:   envOrDefaultDuration("RECORDING_SETTLE_DELAY", 500*time.Millisecond),
			STTProvider:   envOrDefault("STT_PROVIDER", "mock"),
		},
		Collab: CollabConfig{
			AIBaseURL:        envOrDefault("AI_BASE_URL", "http://localhost:5000"),
			InterviewBaseURL: envOrDefault("INTERVIEW_API_URL", "http://localhost:4000/api/interview"),
			Timeout:          envOrDefaultDuration("COLLAB_TIMEOUT", 60*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envOrDefaultList("KAFKA_BROKERS", nil),
			TopicAnswers: envOrDefault("KAFKA_TOPIC_ANSWERS", "interview.answer.recorded"),
			TopicDone:    envOrDefault("KAFKA_TOPIC_SESSIONS", "interview.session.completed"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9091"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
