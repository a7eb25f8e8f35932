// Package stt defines the interface for speech-to-text capture adapters.
package stt

import "context"

// Callback receives transcript results from the STT provider.
type Callback interface {
	// OnTranscript is called with recognized text. Interim results carry
	// final=false and replace the previous interim; final results are
	// appended to the running transcript.
	OnTranscript(text string, final bool)

	// OnError is called when an error occurs during capture.
	OnError(err error)
}

// Adapter defines the interface for STT providers (Google, mock, ...).
// Capture is toggled, never concurrent with itself: Close must be invoked
// before a new Start.
type Adapter interface {
	// Start begins a streaming capture session.
	Start(ctx context.Context, cb Callback) error

	// SendAudio sends audio bytes to the STT provider.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the session and releases resources.
	Close() error
}

// Factory produces a fresh adapter per recording toggle.
type Factory func() Adapter
