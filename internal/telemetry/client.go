// Package telemetry implements the streaming telemetry client: it samples
// frames from a FrameSource at a fixed cadence, ships them to the inference
// service over a persistent websocket and emits classified-state events.
package telemetry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ai-interview-telemetry-service/internal/nonverbal"
	"ai-interview-telemetry-service/internal/observability/logging"
	"ai-interview-telemetry-service/internal/observability/metrics"
)

// ConnState is the transport connection state.
type ConnState int

const (
	// StateClosed - no connection; a reconnect may be pending.
	StateClosed ConnState = iota
	// StateConnecting - a dial is in flight.
	StateConnecting
	// StateOpen - the connection is established and frames flow.
	StateOpen
)

// String returns the string representation of the state.
func (s ConnState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// StateFunc receives one classified state per conforming classifier reply.
type StateFunc func(nonverbal.ClassifiedState)

// Config holds telemetry client configuration.
type Config struct {
	// URL is the websocket endpoint of the inference service.
	URL string
	// CaptureInterval is the frame sampling period. Default 100ms.
	CaptureInterval time.Duration
	// ReconnectInitial/ReconnectMax/ReconnectMultiplier shape the backoff.
	// Defaults: 500ms, 10s, 1.5.
	ReconnectInitial    time.Duration
	ReconnectMax        time.Duration
	ReconnectMultiplier float64
	// Dialer overrides the websocket dialer. Default websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// classifierReply is the expected shape of an inbound classifier message.
// Any other shape is non-conforming and discarded.
type classifierReply struct {
	EyeDirection  string `json:"eye_direction"`
	HeadDirection string `json:"head_direction"`
	MouthState    string `json:"mouth_state"`
}

// Client maintains one physical connection to the inference service at a
// time, with a fixed-cadence capture loop while the connection is open and
// exponential-backoff reconnects while it is not. All resources are scoped
// to the client and released by Cleanup.
type Client struct {
	cfg     Config
	source  FrameSource
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	started bool
	closed  bool
	state   ConnState
	conn    *websocket.Conn
	// gen invalidates the capture and read loops of a dead connection:
	// both loops exit when their generation no longer matches.
	gen       uint64
	reconnect *time.Timer
	backoff   *Backoff
	onState   StateFunc
}

// NewClient creates a telemetry client over the given frame source.
func NewClient(cfg Config, source FrameSource) *Client {
	if cfg.CaptureInterval <= 0 {
		cfg.CaptureInterval = 100 * time.Millisecond
	}
	if cfg.ReconnectInitial <= 0 {
		cfg.ReconnectInitial = 500 * time.Millisecond
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = 10 * time.Second
	}
	if cfg.ReconnectMultiplier <= 1 {
		cfg.ReconnectMultiplier = 1.5
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}

	return &Client{
		cfg:     cfg,
		source:  source,
		log:     logging.WithComponent("telemetry"),
		metrics: metrics.DefaultMetrics,
		backoff: NewBackoff(cfg.ReconnectInitial, cfg.ReconnectMax, cfg.ReconnectMultiplier),
	}
}

// Start acquires the frame source and begins connecting. A second call while
// the client is running is a no-op. Frame source acquisition failure is
// fatal: no transport connection is attempted and there is no retry.
func (c *Client) Start(ctx context.Context, onState StateFunc) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSourceClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.onState = onState
	c.mu.Unlock()

	if err := c.source.Open(ctx); err != nil {
		return fmt.Errorf("acquire frame source: %w", err)
	}

	c.connect()
	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cleanup stops the capture loop, cancels any pending reconnect and closes
// the active connection. Idempotent; no timer fires after it returns.
func (c *Client) Cleanup() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateClosed
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.source.Close()
	c.metrics.RecordDisconnect()
	c.log.Info().Msg("Telemetry client cleaned up")
}

// connect starts a dial unless one is already pending or open.
func (c *Client) connect() {
	c.mu.Lock()
	if c.closed || c.state != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.dial(gen)
}

func (c *Client) dial(gen uint64) {
	conn, resp, err := c.cfg.Dialer.Dial(c.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.state = StateClosed
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.log.Warn().Err(err).Str("url", c.cfg.URL).Msg("Classifier dial failed")
		return
	}

	c.conn = conn
	c.state = StateOpen
	c.backoff.Reset()
	c.mu.Unlock()

	c.metrics.RecordConnect()
	c.log.Info().Str("url", c.cfg.URL).Msg("Classifier connection open")

	go c.captureLoop(gen)
	go c.readLoop(gen, conn)
}

// captureLoop sends one frame per tick while the connection is open. Ticks
// with a closed connection or an unready source are skipped; frames are
// never buffered for later send.
func (c *Client) captureLoop(gen uint64) {
	ticker := time.NewTicker(c.cfg.CaptureInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.closed || gen != c.gen || c.state != StateOpen {
			c.mu.Unlock()
			return
		}
		conn := c.conn
		c.mu.Unlock()

		if !c.source.Ready() {
			c.metrics.RecordFrameSkipped("source_not_ready")
			continue
		}

		frame, err := c.source.Capture()
		if err != nil {
			c.metrics.RecordFrameSkipped("capture_error")
			c.log.Debug().Err(err).Msg("Frame capture failed")
			continue
		}

		payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame)

		// Fire and forget: bound the write so a tick never blocks on the
		// network; a stalled connection surfaces as a write error.
		conn.SetWriteDeadline(time.Now().Add(c.cfg.CaptureInterval))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			c.handleDisconnect(gen, err)
			return
		}
		c.metrics.RecordFrameSent(len(payload))
	}
}

// readLoop parses inbound classifier replies and invokes the state callback.
// Malformed messages are logged and dropped without closing the connection.
func (c *Client) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(gen, err)
			return
		}

		state, ok := parseReply(data)
		c.metrics.RecordReply(!ok)
		if !ok {
			c.log.Debug().Int("bytes", len(data)).Msg("Discarding non-conforming classifier reply")
			continue
		}

		c.mu.Lock()
		stale := c.closed || gen != c.gen
		cb := c.onState
		c.mu.Unlock()
		if stale {
			return
		}
		if cb != nil {
			cb(state)
		}
	}
}

// handleDisconnect tears down the current connection and schedules a
// reconnect. Whichever loop observes the failure first wins; the other
// exits on the generation check.
func (c *Client) handleDisconnect(gen uint64, cause error) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateClosed
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	c.metrics.RecordDisconnect()
	c.log.Warn().Err(cause).Msg("Classifier connection lost")
}

// scheduleReconnectLocked arms the reconnect timer. At most one timer is
// pending at a time. Caller holds c.mu.
func (c *Client) scheduleReconnectLocked() {
	if c.reconnect != nil {
		return
	}
	delay := c.backoff.Next()
	c.metrics.RecordReconnectScheduled()
	c.log.Info().Dur("delay", delay).Msg("Scheduling classifier reconnect")
	c.reconnect = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnect = nil
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		c.connect()
	})
}

func parseReply(data []byte) (nonverbal.ClassifiedState, bool) {
	var reply classifierReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nonverbal.ClassifiedState{}, false
	}
	return nonverbal.ClassifiedState{
		Eye:   orUnknown(reply.EyeDirection),
		Head:  orUnknown(reply.HeadDirection),
		Mouth: orUnknown(reply.MouthState),
	}, true
}

func orUnknown(label string) string {
	if label == "" {
		return nonverbal.LabelUnknown
	}
	return label
}
