package client

import (
	"fmt"
	"io"

	ircerr "tinyirc/internal/errors"
	"tinyirc/internal/protocol"
)

// ── inbound ──────────────────────────────────────────────────────────

// handleLine answers keepalives and dispatches everything else.
func (c *Client) handleLine(line string) {
	c.metrics.LineReceived()
	if line == "" {
		return
	}
	c.logger.Debug("<- %s", line)

	if token, ok := protocol.PingToken(line); ok {
		c.sendQuietly(protocol.Pong(token))
		return
	}

	c.dispatch(protocol.Parse(line))
}

// dispatch raises at most one event for msg.  Commands other than
// PRIVMSG, JOIN and PART, and those missing parameters, are dropped;
// the welcome numeric only reaches WelcomeListeners.
func (c *Client) dispatch(msg *protocol.Message) {
	switch msg.Command {
	case "001":
		c.logger.Verbose("registered as %s", msg.Param(0))
		c.listeners.welcome(msg.Param(0))
	case "PRIVMSG":
		if len(msg.Params) >= 2 {
			c.emit(ChatMessage{Target: msg.Params[0], Sender: msg.Nick(), Text: msg.Params[1]})
		}
	case "JOIN":
		if len(msg.Params) >= 1 {
			c.emit(Joined{Channel: msg.Params[0]})
		}
	case "PART":
		if len(msg.Params) >= 1 {
			c.emit(Left{Channel: msg.Params[0]})
		}
	}
}

// ── outbound ─────────────────────────────────────────────────────────

// Join asks the server to join channel.
func (c *Client) Join(channel string) error { return c.send(protocol.Join(channel)) }

// Part asks the server to leave channel.
func (c *Client) Part(channel string) error { return c.send(protocol.Part(channel)) }

// SendChatMessage sends text to a channel or nick.
func (c *Client) SendChatMessage(target, text string) error {
	return c.send(protocol.Privmsg(target, text))
}

// SendRaw sends line verbatim, followed by CRLF.
func (c *Client) SendRaw(line string) error { return c.send(line) }

// send writes line plus CRLF in one transport call.  There is no
// queue: a failed or short write loses the rest of the line.
func (c *Client) send(line string) error {
	if c.state == Disconnected {
		return ircerr.ErrNotConnected
	}

	c.logger.Debug("-> %s", line)
	wire := line + "\r\n"
	n, err := c.transport.Write([]byte(wire))
	c.metrics.BytesSent(n)
	if err != nil {
		c.metrics.RecordError(err.Error())
		return fmt.Errorf("send %q: %w", line, err)
	}
	if n < len(wire) {
		c.metrics.RecordError("short write")
		return fmt.Errorf("send %q: wrote %d of %d bytes: %w", line, n, len(wire), io.ErrShortWrite)
	}
	c.metrics.LineSent()
	return nil
}

// sendQuietly is send for protocol traffic nobody asked for (keepalive,
// registration, QUIT); failures are only logged.
func (c *Client) sendQuietly(line string) {
	if err := c.send(line); err != nil {
		c.logger.Warn("%v", err)
	}
}
