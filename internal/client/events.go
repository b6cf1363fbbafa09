package client

import (
	"slices"

	"github.com/google/uuid"
)

// Listener receives everything the client reports.  Methods are called
// synchronously from Connect, Disconnect, Update or Close, on the
// caller's goroutine, in the order the causing lines arrived.
type Listener interface {
	// OnLog receives status text about connection transitions.
	OnLog(text string)
	// OnChatMessage receives a PRIVMSG.  Target is the channel or nick it
	// was addressed to; sender is the nick of the originator.
	OnChatMessage(target, sender, text string)
	// OnJoined is raised for every JOIN, whether by this client or
	// another user.
	OnJoined(channel string)
	// OnLeft is raised for every PART, whether by this client or another
	// user.
	OnLeft(channel string)
}

// WelcomeListener is an optional Listener extension.  OnWelcome is
// called when the server accepts the registration (numeric 001), with
// the nick the server assigned.
type WelcomeListener interface {
	OnWelcome(nick string)
}

// Event is one of Log, ChatMessage, Joined or Left.
type Event interface {
	// Deliver calls the Listener method matching the event kind.
	Deliver(l Listener)
}

// Log is status text, such as "Connected.".
type Log struct {
	Text string
}

// ChatMessage is an inbound PRIVMSG.
type ChatMessage struct {
	Target string
	Sender string
	Text   string
}

// Joined reports a JOIN to Channel.
type Joined struct {
	Channel string
}

// Left reports a PART from Channel.
type Left struct {
	Channel string
}

func (e Log) Deliver(l Listener)         { l.OnLog(e.Text) }
func (e ChatMessage) Deliver(l Listener) { l.OnChatMessage(e.Target, e.Sender, e.Text) }
func (e Joined) Deliver(l Listener)      { l.OnJoined(e.Channel) }
func (e Left) Deliver(l Listener)        { l.OnLeft(e.Channel) }

// ── adapters ─────────────────────────────────────────────────────────

// Recorder is a Listener that keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnLog(text string) { r.Events = append(r.Events, Log{Text: text}) }
func (r *Recorder) OnChatMessage(target, sender, text string) {
	r.Events = append(r.Events, ChatMessage{Target: target, Sender: sender, Text: text})
}
func (r *Recorder) OnJoined(channel string) { r.Events = append(r.Events, Joined{Channel: channel}) }
func (r *Recorder) OnLeft(channel string)   { r.Events = append(r.Events, Left{Channel: channel}) }

// Reset forgets recorded events.
func (r *Recorder) Reset() { r.Events = nil }

// Funcs adapts optional callbacks to a Listener.  Nil fields are skipped.
type Funcs struct {
	Log         func(text string)
	ChatMessage func(target, sender, text string)
	Joined      func(channel string)
	Left        func(channel string)
}

func (f Funcs) OnLog(text string) {
	if f.Log != nil {
		f.Log(text)
	}
}

func (f Funcs) OnChatMessage(target, sender, text string) {
	if f.ChatMessage != nil {
		f.ChatMessage(target, sender, text)
	}
}

func (f Funcs) OnJoined(channel string) {
	if f.Joined != nil {
		f.Joined(channel)
	}
}

func (f Funcs) OnLeft(channel string) {
	if f.Left != nil {
		f.Left(channel)
	}
}

// ── registry ─────────────────────────────────────────────────────────

// ListenerID identifies a registration so it can be removed later.
type ListenerID = uuid.UUID

type registration struct {
	id       ListenerID
	listener Listener
}

// listeners keeps registrations in the order they were added.
type listeners struct {
	regs []registration
}

func (ls *listeners) add(l Listener) ListenerID {
	id := uuid.New()
	ls.regs = append(ls.regs, registration{id: id, listener: l})
	return id
}

func (ls *listeners) remove(id ListenerID) bool {
	i := slices.IndexFunc(ls.regs, func(r registration) bool { return r.id == id })
	if i < 0 {
		return false
	}
	ls.regs = slices.Delete(ls.regs, i, i+1)
	return true
}

// welcome notifies every registration implementing WelcomeListener.
func (ls *listeners) welcome(nick string) {
	for _, r := range slices.Clone(ls.regs) {
		if wl, ok := r.listener.(WelcomeListener); ok {
			wl.OnWelcome(nick)
		}
	}
}

// deliver sends ev to a snapshot of the current registrations, so a
// listener may add or remove listeners from inside a callback.
func (ls *listeners) deliver(ev Event) {
	for _, r := range slices.Clone(ls.regs) {
		ev.Deliver(r.listener)
	}
}
