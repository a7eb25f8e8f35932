// Package mock provides a mock STT adapter for running sessions without a
// microphone or cloud credentials. It emits progressive interim transcripts
// followed by one final transcript, on a timer, after Start.
package mock

import (
	"context"
	"sync"
	"time"

	"ai-interview-telemetry-service/internal/speech/stt"
)

// SimulatedAnswer is a scripted spoken answer.
type SimulatedAnswer struct {
	Interims []string // progressive interim transcripts
	Final    string   // final transcript text
}

// DefaultAnswers provides sample answers for simulation.
var DefaultAnswers = []SimulatedAnswer{
	{
		Interims: []string{"a list is", "a list is a mutable"},
		Final:    "a list is a mutable ordered collection of elements",
	},
	{
		Interims: []string{"a function", "a function is defined with"},
		Final:    "a function is defined with the def keyword and can return values",
	},
	{
		Interims: []string{"inheritance lets", "inheritance lets a class"},
		Final:    "inheritance lets a class reuse behavior from a parent class",
	},
	{
		Interims: []string{"exceptions are"},
		Final:    "exceptions are handled with try and except blocks",
	},
}

// answerCounter cycles through the default answers across adapter instances.
var (
	answerCounter int
	counterMu     sync.Mutex
)

// Adapter implements stt.Adapter with scripted transcripts. Unlike a real
// microphone adapter it needs no audio input: transcripts start flowing on a
// ticker once Start is called.
type Adapter struct {
	// Interval between emitted transcripts. Zero means 40ms.
	Interval time.Duration

	answer SimulatedAnswer

	mu     sync.Mutex
	cb     stt.Callback
	closed bool
	timer  *time.Timer
	step   int
}

// New creates a mock adapter with the next scripted answer.
func New() *Adapter {
	counterMu.Lock()
	idx := answerCounter % len(DefaultAnswers)
	answerCounter++
	counterMu.Unlock()

	return &Adapter{answer: DefaultAnswers[idx]}
}

// Start begins emitting the scripted transcripts.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.cb = cb
	a.scheduleLocked()
	return nil
}

// SendAudio is a no-op for the mock: transcripts are timer-driven.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	return nil
}

// Close stops emission. The transcript delivered so far stands.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	return nil
}

func (a *Adapter) interval() time.Duration {
	if a.Interval > 0 {
		return a.Interval
	}
	return 40 * time.Millisecond
}

// scheduleLocked arms the next emission. Caller holds a.mu.
func (a *Adapter) scheduleLocked() {
	if a.step > len(a.answer.Interims) {
		return
	}
	a.timer = time.AfterFunc(a.interval(), a.emit)
}

func (a *Adapter) emit() {
	a.mu.Lock()
	if a.closed || a.cb == nil {
		a.mu.Unlock()
		return
	}
	cb := a.cb
	step := a.step
	a.step++
	a.scheduleLocked()
	a.mu.Unlock()

	if step < len(a.answer.Interims) {
		cb.OnTranscript(a.answer.Interims[step], false)
	} else if step == len(a.answer.Interims) {
		cb.OnTranscript(a.answer.Final, true)
	}
}
