// Package client is the IRC protocol core: it owns one server
// connection, frames and parses the inbound stream, tracks the
// connection state, and reports what happens to registered listeners.
//
// The client has no goroutines and no locks.  Every method runs on the
// caller's goroutine and must not be called concurrently; a front end
// drives it by calling Update on a timer.
package client

import (
	"context"
	"fmt"

	ircerr "tinyirc/internal/errors"
	"tinyirc/internal/metrics"
	"tinyirc/internal/protocol"
	"tinyirc/internal/transport"
	"tinyirc/util"
)

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Identity is who to connect as, and where.  It is fixed for the
// lifetime of one connection attempt.
type Identity struct {
	Server   string
	Port     int
	Nick     string
	User     string
	RealName string
}

const (
	// readChunk is how much one Update reads at most.
	readChunk = 1023

	reasonReconnect    = "Reconnecting"
	reasonRemoteClosed = "Remote host closed connection"
	reasonExit         = "Client exiting"
)

// Client is a single-server IRC connection.
type Client struct {
	transport transport.Transport
	logger    *util.Logger
	metrics   *metrics.Collector

	state     State
	identity  Identity
	framer    protocol.Framer
	listeners listeners
	readBuf   []byte
}

// New returns a disconnected client that talks through tr.  A nil
// logger is replaced by a silent one; a nil collector disables metrics.
func New(tr transport.Transport, logger *util.Logger, m *metrics.Collector) *Client {
	if logger == nil {
		logger = util.Nop()
	}
	return &Client{
		transport: tr,
		logger:    logger,
		metrics:   m,
		readBuf:   make([]byte, readChunk),
	}
}

// AddListener registers l for all future events.
func (c *Client) AddListener(l Listener) ListenerID { return c.listeners.add(l) }

// RemoveListener unregisters a listener; it reports whether id was known.
func (c *Client) RemoveListener(id ListenerID) bool { return c.listeners.remove(id) }

// State returns the current connection state.
func (c *Client) State() State { return c.state }

// Identity returns the identity of the current or last connection.
func (c *Client) Identity() Identity { return c.identity }

// Connect opens the transport and registers with NICK and USER.  An
// existing connection is dropped first with reason "Reconnecting".
//
// The client reports Connected as soon as the registration commands are
// written; it does not wait for the server's welcome reply.  A connect
// failure is reported as a Log event and also returned.
func (c *Client) Connect(ctx context.Context, id Identity) error {
	if c.state != Disconnected {
		c.Disconnect(reasonReconnect)
	}

	c.identity = id
	c.framer.Reset()
	c.emit(Log{Text: "Connecting to " + id.Server + "..."})

	if err := c.transport.Connect(ctx, id.Server, id.Port); err != nil {
		c.logger.Warn("connect to %s: %v", util.FormatAddr(id.Server, id.Port), err)
		c.metrics.ConnectFailed()
		c.metrics.RecordError(err.Error())
		c.setState(Disconnected)
		c.emit(Log{Text: "Connection failed."})
		return fmt.Errorf("connect %s: %w", id.Server, err)
	}
	c.metrics.Connected()

	c.setState(Connecting)
	c.sendQuietly(protocol.Nick(id.Nick))
	c.sendQuietly(protocol.User(id.User, id.RealName))
	c.setState(Connected)

	c.emit(Log{Text: "Connected."})
	return nil
}

// Disconnect sends QUIT with reason, closes the transport and reports
// it.  It does nothing when already disconnected.
func (c *Client) Disconnect(reason string) {
	if c.state == Disconnected {
		return
	}
	c.sendQuietly(protocol.Quit(reason))
	c.teardown(reason)
}

// Close disconnects with the reason "Client exiting".
func (c *Client) Close() error {
	c.Disconnect(reasonExit)
	return nil
}

// Update performs one non-blocking read and dispatches every complete
// line it produced.  It returns immediately when there is no data.
func (c *Client) Update() {
	if c.state == Disconnected {
		return
	}

	n, err := c.transport.Read(c.readBuf)
	if n > 0 {
		c.metrics.BytesReceived(n)
		for line := range c.framer.Feed(c.readBuf[:n]) {
			c.handleLine(line)
			if c.state == Disconnected {
				// A listener hung up; the rest belongs to a dead session.
				break
			}
		}
	}

	switch {
	case err == nil, c.state == Disconnected:
	case ircerr.IsClosed(err):
		c.logger.Verbose("server closed the connection")
		c.teardown(reasonRemoteClosed)
	case !ircerr.IsWouldBlock(err):
		c.logger.Debug("read: %v", err)
	}
}

// teardown closes the transport and reports the disconnect without
// sending anything.
func (c *Client) teardown(reason string) {
	if err := c.transport.Close(); err != nil {
		c.logger.Debug("close: %v", err)
	}
	c.metrics.Disconnected()
	c.setState(Disconnected)
	c.emit(Log{Text: "Disconnected: " + reason})
}

func (c *Client) setState(s State) {
	if c.state != s {
		c.logger.Verbose("state %s -> %s", c.state, s)
	}
	c.state = s
}

func (c *Client) emit(ev Event) {
	c.metrics.EventEmitted()
	c.listeners.deliver(ev)
}
