package console

import (
	"fmt"
	"strings"
)

// Kind identifies what a line of user input asks for.
type Kind int

const (
	KindNone    Kind = iota // blank line
	KindSay                 // plain text for the focused window
	KindJoin                // /join <channel>
	KindPart                // /part [channel]
	KindMsg                 // /msg <target> <text>
	KindRaw                 // /raw <line>
	KindQuit                // /quit [reason]
	KindWindow              // /win [target]
	KindConnect             // /connect [host[:port]]
	KindHelp                // /help
)

// Command is one parsed input line.
type Command struct {
	Kind   Kind
	Target string // channel, nick, window or server, depending on Kind
	Text   string
}

// Sender is the part of the client that commands are executed against.
type Sender interface {
	Join(channel string) error
	Part(channel string) error
	SendChatMessage(target, text string) error
	SendRaw(line string) error
}

// ParseInput turns a typed line into a Command.  Lines starting with
// "//" are plain text with the first slash removed.
func ParseInput(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Command{Kind: KindNone}, nil
	}
	if !strings.HasPrefix(line, "/") || strings.HasPrefix(line, "//") {
		return Command{Kind: KindSay, Text: strings.TrimPrefix(line, "/")}, nil
	}

	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(name) {
	case "join", "j":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /join <channel>")
		}
		channel, _, _ := strings.Cut(rest, " ")
		if !strings.ContainsRune("#&+!", rune(channel[0])) {
			channel = "#" + channel
		}
		return Command{Kind: KindJoin, Target: channel}, nil

	case "part", "leave":
		channel, _, _ := strings.Cut(rest, " ")
		return Command{Kind: KindPart, Target: channel}, nil

	case "msg", "query":
		target, text, _ := strings.Cut(rest, " ")
		if target == "" || strings.TrimSpace(text) == "" {
			return Command{}, fmt.Errorf("usage: /msg <target> <text>")
		}
		return Command{Kind: KindMsg, Target: target, Text: text}, nil

	case "raw", "quote":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /raw <line>")
		}
		return Command{Kind: KindRaw, Text: rest}, nil

	case "quit", "exit":
		return Command{Kind: KindQuit, Text: rest}, nil

	case "win", "window", "w":
		return Command{Kind: KindWindow, Target: rest}, nil

	case "connect", "server":
		return Command{Kind: KindConnect, Target: rest}, nil

	case "help", "?":
		return Command{Kind: KindHelp}, nil
	}
	return Command{}, fmt.Errorf("unknown command /%s (try /help)", name)
}

const helpText = `commands:
  /join <channel>        join a channel
  /part [channel]        leave a channel (default: current window)
  /msg <target> <text>   send a private message
  /raw <line>            send a protocol line as-is
  /win [target]          switch window, or list windows
  /connect [host[:port]] reconnect, optionally to another server
  /quit [reason]         disconnect and exit
text without a leading / goes to the current window`

// Execute runs cmd against s and echoes what was sent.  KindQuit and
// KindConnect belong to the session and are rejected here.
func (c *Console) Execute(cmd Command, s Sender) error {
	switch cmd.Kind {
	case KindNone:
		return nil

	case KindSay:
		if c.current == "" {
			if err := s.SendRaw(cmd.Text); err != nil {
				return err
			}
			c.printf("> %s", cmd.Text)
			return nil
		}
		return c.say(s, c.current, cmd.Text)

	case KindMsg:
		if !isChannel(cmd.Target) {
			c.open(cmd.Target)
		}
		return c.say(s, cmd.Target, cmd.Text)

	case KindJoin:
		return s.Join(cmd.Target)

	case KindPart:
		channel := cmd.Target
		if channel == "" {
			channel = c.current
		}
		if !isChannel(channel) {
			if channel != "" && c.close(channel) {
				return nil // closing a query window needs no server round trip
			}
			return fmt.Errorf("/part: not in a channel window")
		}
		return s.Part(channel)

	case KindRaw:
		if err := s.SendRaw(cmd.Text); err != nil {
			return err
		}
		c.printf("> %s", cmd.Text)
		return nil

	case KindWindow:
		if cmd.Target == "" {
			c.Status("windows: %s", strings.Join(append([]string{StatusWindow}, c.windows...), " "))
			return nil
		}
		return c.switchTo(cmd.Target)

	case KindHelp:
		for _, l := range strings.Split(helpText, "\n") {
			c.printf("%s", l)
		}
		return nil
	}
	return fmt.Errorf("command not available here")
}

func (c *Console) say(s Sender, target, text string) error {
	if err := s.SendChatMessage(target, text); err != nil {
		return err
	}
	c.printf("[%s] <Me> %s", target, text)
	return nil
}
