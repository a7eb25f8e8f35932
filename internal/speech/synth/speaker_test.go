package synth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingSpeaker holds each utterance until its context is canceled.
type blockingSpeaker struct {
	mu      sync.Mutex
	started []string
	done    []error
}

func (b *blockingSpeaker) Speak(ctx context.Context, text string) error {
	b.mu.Lock()
	b.started = append(b.started, text)
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	b.done = append(b.done, ctx.Err())
	b.mu.Unlock()
	return ctx.Err()
}

func TestSerialCancelsInProgressUtterance(t *testing.T) {
	inner := &blockingSpeaker{}
	s := NewSerial(inner)

	errs := make(chan error, 1)
	go func() {
		errs <- s.Speak(context.Background(), "first prompt")
	}()

	// Wait for the first utterance to start
	deadline := time.Now().Add(time.Second)
	for {
		inner.mu.Lock()
		n := len(inner.started)
		inner.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first utterance never started")
		}
		time.Sleep(time.Millisecond)
	}

	go s.Speak(context.Background(), "second prompt")

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first utterance error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first utterance not canceled by second")
	}

	s.Cancel()
}

func TestSerialCancelIsIdempotent(t *testing.T) {
	s := NewSerial(&Log{})
	s.Cancel()
	s.Cancel()
}

func TestLogSpeakerHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLog()
	if err := l.Speak(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
