// Package session drives a mock interview: voicing prompts, capturing spoken
// answers, and coordinating the feedback and persistence collaborators.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// Phase represents the lifecycle phase of an interview session.
type Phase int

const (
	// PhaseInitializing - Session created, collaborators not yet called.
	PhaseInitializing Phase = iota
	// PhasePrompting - A question is being voiced.
	PhasePrompting
	// PhaseIdle - Waiting for the candidate to record or move on.
	PhaseIdle
	// PhaseRecording - Speech capture is active.
	PhaseRecording
	// PhaseSubmitting - An answer is in flight to the collaborators.
	PhaseSubmitting
	// PhaseCompleted - Session finished normally. Terminal.
	PhaseCompleted
	// PhaseErrored - Session abandoned after an unrecoverable error. Terminal.
	PhaseErrored
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "INITIALIZING"
	case PhasePrompting:
		return "PROMPTING"
	case PhaseIdle:
		return "IDLE"
	case PhaseRecording:
		return "RECORDING"
	case PhaseSubmitting:
		return "SUBMITTING"
	case PhaseCompleted:
		return "COMPLETED"
	case PhaseErrored:
		return "ERRORED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", p)
	}
}

// IsTerminal returns true if the phase is terminal (COMPLETED or ERRORED).
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseErrored
}

// Errors for invalid phase transitions.
var (
	ErrAlreadyStarted   = errors.New("session already started")
	ErrSessionDone      = errors.New("session is finished")
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
	ErrStillRecording   = errors.New("stop recording first")
	ErrSubmitInFlight   = errors.New("an answer submission is in flight")
)

// Lifecycle manages the phase machine for a single session.
// Thread-safe for concurrent access.
//
// Phase transitions:
//
//	INITIALIZING → PROMPTING → IDLE ⇄ RECORDING
//	                  ↑          │
//	                  │          └── BeginSubmit() ──→ SUBMITTING
//	                  │                                   │
//	                  └────── Prompted()/next question ───┤
//	                                                      └──→ COMPLETED
//
// Rules:
//   - Recording toggles only between IDLE and RECORDING.
//   - Submission requires IDLE: a live recording blocks it.
//   - COMPLETED and ERRORED accept no further transitions.
type Lifecycle struct {
	mu    sync.RWMutex
	phase Phase
}

// NewLifecycle creates a session lifecycle in INITIALIZING phase.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{phase: PhaseInitializing}
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// IsDone returns true if the session is in a terminal phase.
func (l *Lifecycle) IsDone() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase.IsTerminal()
}

// Begin transitions INITIALIZING → PROMPTING. Any later phase means the
// session was already started.
func (l *Lifecycle) Begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.phase {
	case PhaseInitializing:
		l.phase = PhasePrompting
		return nil
	case PhaseCompleted, PhaseErrored:
		return ErrSessionDone
	default:
		return ErrAlreadyStarted
	}
}

// Prompted transitions PROMPTING → IDLE once the question has been voiced.
// A no-op in any other phase.
func (l *Lifecycle) Prompted() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == PhasePrompting {
		l.phase = PhaseIdle
	}
}

// StartRecording transitions IDLE (or PROMPTING, cutting the prompt short)
// to RECORDING.
func (l *Lifecycle) StartRecording() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.phase {
	case PhaseIdle, PhasePrompting:
		l.phase = PhaseRecording
		return nil
	case PhaseRecording:
		return ErrAlreadyRecording
	case PhaseSubmitting:
		return ErrSubmitInFlight
	case PhaseCompleted, PhaseErrored:
		return ErrSessionDone
	default:
		return fmt.Errorf("unexpected phase: %v", l.phase)
	}
}

// StopRecording transitions RECORDING → IDLE.
func (l *Lifecycle) StopRecording() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.phase {
	case PhaseRecording:
		l.phase = PhaseIdle
		return nil
	case PhaseCompleted, PhaseErrored:
		return ErrSessionDone
	default:
		return ErrNotRecording
	}
}

// BeginSubmit transitions IDLE → SUBMITTING. A live recording must be
// stopped first.
func (l *Lifecycle) BeginSubmit() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.phase {
	case PhaseIdle, PhasePrompting:
		l.phase = PhaseSubmitting
		return nil
	case PhaseRecording:
		return ErrStillRecording
	case PhaseSubmitting:
		return ErrSubmitInFlight
	case PhaseCompleted, PhaseErrored:
		return ErrSessionDone
	default:
		return fmt.Errorf("unexpected phase: %v", l.phase)
	}
}

// NextPrompt transitions SUBMITTING → PROMPTING for the next question.
func (l *Lifecycle) NextPrompt() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == PhaseSubmitting {
		l.phase = PhasePrompting
	}
}

// Resume transitions SUBMITTING back to IDLE after a failed submission so
// the candidate can retry.
func (l *Lifecycle) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == PhaseSubmitting {
		l.phase = PhaseIdle
	}
}

// Complete transitions the session to COMPLETED. Idempotent.
func (l *Lifecycle) Complete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.phase.IsTerminal() {
		l.phase = PhaseCompleted
	}
}

// Fail transitions the session to ERRORED.
// Returns true if the session was failed, false if already terminal.
func (l *Lifecycle) Fail() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase.IsTerminal() {
		return false
	}
	l.phase = PhaseErrored
	return true
}
