// Package console is the terminal front end: it renders client events
// as text, keeps track of open channel and query windows, and turns
// typed input into client calls.
//
// A Console is owned by the goroutine that drives the client.  Only
// Prompt may be called from elsewhere.
package console

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"

	"tinyirc/util"
)

// StatusWindow is the name shown for the server window, which is not
// tied to a channel or nick.
const StatusWindow = "status"

// Console renders events to out.  It implements client.Listener.
type Console struct {
	out    io.Writer
	decode func(string) string
	logger *util.Logger

	windows []string // open channel and query windows, in open order
	current string   // "" is the status window
	prompt  atomic.Value
}

// New returns a Console writing to out and decoding inbound text with
// the named charset (see config.Encodings).
func New(out io.Writer, encoding string, logger *util.Logger) (*Console, error) {
	dec, err := NewDecoder(encoding)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = util.Nop()
	}
	c := &Console{out: out, decode: dec, logger: logger}
	c.focus("")
	return c, nil
}

// ── client.Listener ──────────────────────────────────────────────────

// OnLog prints connection status in the status window.
func (c *Console) OnLog(text string) {
	c.printf("-!- %s", text)
}

// OnChatMessage prints a message in its window.  Channel messages go to
// the channel window; anything addressed to a nick goes to a query
// window named after the sender, which is opened on first use.
func (c *Console) OnChatMessage(target, sender, text string) {
	window := target
	if !isChannel(target) {
		window = sender
		c.open(window)
	}
	c.printf("[%s] <%s> %s", window, c.decode(sender), c.decode(text))
}

// OnJoined opens and focuses the channel window.
func (c *Console) OnJoined(channel string) {
	c.open(channel)
	c.focus(channel)
	c.printf("[%s] -!- joined %s", channel, channel)
}

// OnLeft closes the channel window.  Focus falls back to the most
// recently opened remaining window, or the status window.
func (c *Console) OnLeft(channel string) {
	if !c.close(channel) {
		c.logger.Debug("part from %s, which has no window", channel)
	}
	c.printf("-!- left %s", channel)
}

// ── windows ──────────────────────────────────────────────────────────

// Current returns the focused window, "" for the status window.
func (c *Console) Current() string { return c.current }

// Windows returns the open windows in the order they were opened.
func (c *Console) Windows() []string { return slices.Clone(c.windows) }

// Prompt is the input prompt for the focused window.  It is safe to
// call from the input goroutine.
func (c *Console) Prompt() string {
	p, _ := c.prompt.Load().(string)
	return p
}

// Status prints a local notice, such as a command error.
func (c *Console) Status(format string, args ...any) {
	c.printf("-!- "+format, args...)
}

func (c *Console) open(window string) {
	if window == "" || slices.Contains(c.windows, window) {
		return
	}
	c.windows = append(c.windows, window)
}

func (c *Console) close(window string) bool {
	i := slices.Index(c.windows, window)
	if i < 0 {
		return false
	}
	c.windows = slices.Delete(c.windows, i, i+1)
	if c.current == window {
		next := ""
		if len(c.windows) > 0 {
			next = c.windows[len(c.windows)-1]
		}
		c.focus(next)
	}
	return true
}

func (c *Console) focus(window string) {
	c.current = window
	name := window
	if name == "" {
		name = StatusWindow
	}
	c.prompt.Store("[" + name + "] ")
}

// switchTo focuses window, which must be open or the status window.
func (c *Console) switchTo(window string) error {
	if window == "" || strings.EqualFold(window, StatusWindow) {
		c.focus("")
		return nil
	}
	if !slices.Contains(c.windows, window) {
		return fmt.Errorf("no window %q", window)
	}
	c.focus(window)
	return nil
}

func (c *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format+"\n", args...); err != nil {
		c.logger.Debug("console write: %v", err)
	}
}

func isChannel(name string) bool {
	return strings.HasPrefix(name, "#")
}
