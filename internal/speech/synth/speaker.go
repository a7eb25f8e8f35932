// Package synth defines the speech synthesis interface used to voice
// interview prompts, plus implementations for headless environments.
package synth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"ai-interview-telemetry-service/internal/observability/logging"
)

// Speaker voices one utterance. Implementations should honor context
// cancellation mid-utterance.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Serial wraps a Speaker and enforces the single-utterance rule: issuing a
// new utterance cancels the one in progress. There is no queued playback.
type Serial struct {
	inner Speaker

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSerial wraps inner with cancel-on-new-utterance semantics.
func NewSerial(inner Speaker) *Serial {
	return &Serial{inner: inner}
}

// Speak cancels any utterance in progress, then voices text.
func (s *Serial) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	return s.inner.Speak(ctx, text)
}

// Cancel stops the utterance in progress, if any. Safe to call repeatedly.
func (s *Serial) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Log is a Speaker that logs utterances instead of voicing them. Used in
// headless runs and tests.
type Log struct {
	log zerolog.Logger
}

// NewLog returns a logging speaker.
func NewLog() *Log {
	return &Log{log: logging.WithComponent("synth")}
}

// Speak logs the utterance.
func (l *Log) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.log.Info().Str("text", text).Msg("Speaking")
	return nil
}
