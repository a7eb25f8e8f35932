package telemetry

import "time"

// Backoff computes exponential reconnect delays. Not safe for concurrent use;
// the client serializes access under its own lock.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64

	next time.Duration
}

// NewBackoff returns a backoff starting at initial, growing by multiplier per
// attempt, capped at max.
func NewBackoff(initial, max time.Duration, multiplier float64) *Backoff {
	return &Backoff{Initial: initial, Max: max, Multiplier: multiplier}
}

// Next returns the delay to use for the upcoming reconnect attempt and
// advances the sequence. A fresh (or reset) backoff yields Initial first.
func (b *Backoff) Next() time.Duration {
	if b.next == 0 {
		b.next = b.Initial
	}
	d := b.next
	grown := time.Duration(float64(b.next) * b.Multiplier)
	if grown > b.Max {
		grown = b.Max
	}
	b.next = grown
	return d
}

// Reset restores the sequence so the next failure starts from Initial again.
// Called on every successful connection.
func (b *Backoff) Reset() {
	b.next = 0
}
