package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"ai-interview-telemetry-service/internal/collab"
	"ai-interview-telemetry-service/internal/config"
	"ai-interview-telemetry-service/internal/events"
	"ai-interview-telemetry-service/internal/httpapi"
	"ai-interview-telemetry-service/internal/nonverbal"
	"ai-interview-telemetry-service/internal/observability"
	"ai-interview-telemetry-service/internal/observability/logging"
	"ai-interview-telemetry-service/internal/observability/metrics"
	"ai-interview-telemetry-service/internal/session"
	"ai-interview-telemetry-service/internal/speech/stt"
	"ai-interview-telemetry-service/internal/speech/stt/google"
	"ai-interview-telemetry-service/internal/speech/stt/mock"
	"ai-interview-telemetry-service/internal/speech/synth"
	"ai-interview-telemetry-service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs := observability.NewServer(cfg.Observability.MetricsAddr)
	obs.Start()

	publisher := events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicAnswers: cfg.Kafka.TopicAnswers,
		TopicDone:    cfg.Kafka.TopicDone,
		Principal:    cfg.Kafka.Principal,
	})
	defer publisher.Close()

	shared := collab.NewHTTP(cfg.Collab.Timeout)
	ai := collab.NewAIClient(cfg.Collab.AIBaseURL, shared)
	store := collab.NewInterviewClient(cfg.Collab.InterviewBaseURL, shared)

	agg := nonverbal.NewAggregator()

	source := telemetry.NewSyntheticSource(cfg.Telemetry.FrameWidth, cfg.Telemetry.FrameHeight)
	tc := telemetry.NewClient(telemetry.Config{
		URL:                 cfg.Telemetry.ClassifierURL,
		CaptureInterval:     cfg.Telemetry.CaptureInterval,
		ReconnectInitial:    cfg.Telemetry.ReconnectInitial,
		ReconnectMax:        cfg.Telemetry.ReconnectMax,
		ReconnectMultiplier: cfg.Telemetry.ReconnectMultiplier,
	}, source)

	sttFactory, err := sttFactoryFor(ctx, cfg.Session.STTProvider)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Session.STTProvider).Msg("Failed to initialize STT provider")
	}

	ctrl := session.NewController(session.Config{
		UserID:        cfg.Session.UserID,
		Domain:        cfg.Session.Domain,
		Level:         cfg.Session.Level,
		QuestionCount: cfg.Session.QuestionCount,
		SettleDelay:   cfg.Session.SettleDelay,
	}, ai, ai, store, publisher, synth.NewLog(), sttFactory, agg)

	if err := tc.Start(ctx, func(s nonverbal.ClassifiedState) {
		for _, cat := range agg.Record(s) {
			metrics.DefaultMetrics.RecordTransition(string(cat))
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to start telemetry client")
	}
	defer tc.Cleanup()

	if err := ctrl.Begin(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start interview session")
	}
	defer ctrl.Teardown()

	api := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      httpapi.NewRouter(ctrl, tc),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", api.Addr).Msg("Session API listening")
		if err := api.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Session API server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Session API shutdown error")
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown error")
	}
}

// sttFactoryFor selects the speech capture adapter. The google adapter is
// created once and reopens a stream per recording toggle; the mock produces
// a fresh scripted answer per toggle.
func sttFactoryFor(ctx context.Context, provider string) (stt.Factory, error) {
	switch provider {
	case "google":
		adapter, err := google.New(ctx)
		if err != nil {
			return nil, err
		}
		return func() stt.Adapter { return adapter }, nil
	default:
		return func() stt.Adapter { return mock.New() }, nil
	}
}
