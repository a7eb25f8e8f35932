package telemetry

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// ErrSourceClosed is returned by Capture after the source has been closed.
var ErrSourceClosed = errors.New("frame source is closed")

// FrameSource supplies encoded JPEG frames to the telemetry client. The
// camera is modeled behind this interface so the client's lifecycle can be
// exercised without a live capture device.
type FrameSource interface {
	// Open acquires the capture device. Failure is fatal for the client:
	// no transport connection is attempted and there is no retry.
	Open(ctx context.Context) error

	// Ready reports whether a frame can be captured right now. A capture
	// tick that finds the source not ready is skipped, never queued.
	Ready() bool

	// Capture returns the current frame encoded as JPEG.
	Capture() ([]byte, error)

	// Close releases the capture device. Idempotent.
	Close() error
}

// SyntheticSource produces a flat-color JPEG frame at a fixed resolution.
// Used for development runs and tests where no camera exists.
type SyntheticSource struct {
	Width  int
	Height int
	// Quality is the JPEG quality; zero means jpeg.DefaultQuality.
	Quality int

	mu     sync.Mutex
	opened bool
	closed bool
	frame  []byte
}

// NewSyntheticSource returns a synthetic source at the given resolution.
func NewSyntheticSource(width, height int) *SyntheticSource {
	return &SyntheticSource{Width: width, Height: height}
}

// Open encodes the frame once; subsequent captures reuse it.
func (s *SyntheticSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}
	if s.opened {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.Set(x, y, gray)
		}
	}

	quality := s.Quality
	if quality == 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return err
	}
	s.frame = buf.Bytes()
	s.opened = true
	return nil
}

// Ready reports whether the source is open.
func (s *SyntheticSource) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened && !s.closed
}

// Capture returns the pre-encoded frame.
func (s *SyntheticSource) Capture() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.opened {
		return nil, ErrSourceClosed
	}
	return s.frame, nil
}

// Close releases the source. Idempotent.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.opened = false
	s.frame = nil
	return nil
}
