package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "LOG_LEVEL",
		"CLASSIFIER_WS_URL", "CAPTURE_INTERVAL",
		"RECONNECT_INITIAL", "RECONNECT_MAX", "RECONNECT_MULTIPLIER",
		"INTERVIEW_DOMAIN", "INTERVIEW_LEVEL", "INTERVIEW_QUESTIONS",
		"RECORDING_SETTLE_DELAY", "STT_PROVIDER",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_PRINCIPAL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Principal != "svc-interview-telemetry" {
		t.Errorf("expected default principal 'svc-interview-telemetry', got %s", cfg.Service.Principal)
	}
	if cfg.Telemetry.ClassifierURL != "ws://localhost:8000/ws" {
		t.Errorf("expected default classifier URL, got %s", cfg.Telemetry.ClassifierURL)
	}
	if cfg.Telemetry.CaptureInterval != 100*time.Millisecond {
		t.Errorf("expected default capture interval 100ms, got %v", cfg.Telemetry.CaptureInterval)
	}
	if cfg.Telemetry.ReconnectInitial != 500*time.Millisecond {
		t.Errorf("expected default reconnect initial 500ms, got %v", cfg.Telemetry.ReconnectInitial)
	}
	if cfg.Telemetry.ReconnectMax != 10*time.Second {
		t.Errorf("expected default reconnect max 10s, got %v", cfg.Telemetry.ReconnectMax)
	}
	if cfg.Telemetry.ReconnectMultiplier != 1.5 {
		t.Errorf("expected default reconnect multiplier 1.5, got %v", cfg.Telemetry.ReconnectMultiplier)
	}
	if cfg.Session.STTProvider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.Session.STTProvider)
	}
	if cfg.Session.QuestionCount != 3 {
		t.Errorf("expected default question count 3, got %d", cfg.Session.QuestionCount)
	}
	if cfg.Session.SettleDelay != 500*time.Millisecond {
		t.Errorf("expected default settle delay 500ms, got %v", cfg.Session.SettleDelay)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("CLASSIFIER_WS_URL", "ws://classifier:9000/ws")
	os.Setenv("CAPTURE_INTERVAL", "250ms")
	os.Setenv("RECONNECT_MULTIPLIER", "2.0")
	os.Setenv("INTERVIEW_QUESTIONS", "5")
	os.Setenv("STT_PROVIDER", "google")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	defer func() {
		os.Unsetenv("SERVICE_PRINCIPAL")
		os.Unsetenv("CLASSIFIER_WS_URL")
		os.Unsetenv("CAPTURE_INTERVAL")
		os.Unsetenv("RECONNECT_MULTIPLIER")
		os.Unsetenv("INTERVIEW_QUESTIONS")
		os.Unsetenv("STT_PROVIDER")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("KAFKA_BROKERS")
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Telemetry.ClassifierURL != "ws://classifier:9000/ws" {
		t.Errorf("expected custom classifier URL, got %s", cfg.Telemetry.ClassifierURL)
	}
	if cfg.Telemetry.CaptureInterval != 250*time.Millisecond {
		t.Errorf("expected capture interval 250ms, got %v", cfg.Telemetry.CaptureInterval)
	}
	if cfg.Telemetry.ReconnectMultiplier != 2.0 {
		t.Errorf("expected reconnect multiplier 2.0, got %v", cfg.Telemetry.ReconnectMultiplier)
	}
	if cfg.Session.QuestionCount != 5 {
		t.Errorf("expected question count 5, got %d", cfg.Session.QuestionCount)
	}
	if cfg.Session.STTProvider != "google" {
		t.Errorf("expected STT provider 'google', got %s", cfg.Session.STTProvider)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("expected trimmed broker list, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("CAPTURE_INTERVAL", "not-a-duration")
	os.Setenv("RECONNECT_MULTIPLIER", "fast")
	os.Setenv("INTERVIEW_QUESTIONS", "many")
	os.Setenv("KAFKA_ENABLED", "maybe")

	defer func() {
		os.Unsetenv("CAPTURE_INTERVAL")
		os.Unsetenv("RECONNECT_MULTIPLIER")
		os.Unsetenv("INTERVIEW_QUESTIONS")
		os.Unsetenv("KAFKA_ENABLED")
	}()

	cfg := Load()

	if cfg.Telemetry.CaptureInterval != 100*time.Millisecond {
		t.Errorf("expected default capture interval on invalid input, got %v", cfg.Telemetry.CaptureInterval)
	}
	if cfg.Telemetry.ReconnectMultiplier != 1.5 {
		t.Errorf("expected default multiplier on invalid input, got %v", cfg.Telemetry.ReconnectMultiplier)
	}
	if cfg.Session.QuestionCount != 3 {
		t.Errorf("expected default question count on invalid input, got %d", cfg.Session.QuestionCount)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled on invalid input")
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
