// Package metrics provides lightweight, lock-free counters for tracking
// the traffic and lifecycle of an IRC session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for an IRC session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	connects      atomic.Int64
	connectFails  atomic.Int64
	disconnects   atomic.Int64
	bytesIn       atomic.Int64
	bytesOut      atomic.Int64
	linesIn       atomic.Int64
	linesOut      atomic.Int64
	eventsEmitted atomic.Int64
	errorsTotal   atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection lifecycle ─────────────────────────────────────────────

// Connected records a successful transport connect.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connects.Add(1)
}

// ConnectFailed records a failed connect attempt.
func (c *Collector) ConnectFailed() {
	if c == nil {
		return
	}
	c.connectFails.Add(1)
}

// Disconnected records a local or remote disconnect.
func (c *Collector) Disconnected() {
	if c == nil {
		return
	}
	c.disconnects.Add(1)
}

// Connects returns the number of successful connects.
func (c *Collector) Connects() int64 {
	if c == nil {
		return 0
	}
	return c.connects.Load()
}

// Disconnects returns the number of disconnects.
func (c *Collector) Disconnects() int64 {
	if c == nil {
		return 0
	}
	return c.disconnects.Load()
}

// ── Traffic ──────────────────────────────────────────────────────────

// BytesReceived records n bytes read from the transport.
func (c *Collector) BytesReceived(n int) {
	if c == nil {
		return
	}
	c.bytesIn.Add(int64(n))
}

// BytesSent records n bytes written to the transport.
func (c *Collector) BytesSent(n int) {
	if c == nil {
		return
	}
	c.bytesOut.Add(int64(n))
}

// LineReceived records one framed inbound line.
func (c *Collector) LineReceived() {
	if c == nil {
		return
	}
	c.linesIn.Add(1)
}

// LineSent records one outbound command.
func (c *Collector) LineSent() {
	if c == nil {
		return
	}
	c.linesOut.Add(1)
}

// EventEmitted records one event delivered to listeners.
func (c *Collector) EventEmitted() {
	if c == nil {
		return
	}
	c.eventsEmitted.Add(1)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// LinesIn returns the number of inbound lines.
func (c *Collector) LinesIn() int64 {
	if c == nil {
		return 0
	}
	return c.linesIn.Load()
}

// LinesOut returns the number of outbound commands.
func (c *Collector) LinesOut() int64 {
	if c == nil {
		return 0
	}
	return c.linesOut.Load()
}

// Events returns the number of events emitted.
func (c *Collector) Events() int64 {
	if c == nil {
		return 0
	}
	return c.eventsEmitted.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Connects         int64  `json:"connects"`
	ConnectFailures  int64  `json:"connect_failures"`
	Disconnects      int64  `json:"disconnects"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	LinesIn          int64  `json:"lines_in"`
	LinesOut         int64  `json:"lines_out"`
	EventsEmitted    int64  `json:"events_emitted"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		Connects:        c.connects.Load(),
		ConnectFailures: c.connectFails.Load(),
		Disconnects:     c.disconnects.Load(),
		BytesIn:         c.bytesIn.Load(),
		BytesOut:        c.bytesOut.Load(),
		LinesIn:         c.linesIn.Load(),
		LinesOut:        c.linesOut.Load(),
		EventsEmitted:   c.eventsEmitted.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
