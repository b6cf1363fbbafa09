// Package protocol implements IRC line framing and message parsing.
package protocol

import "strings"

// Message represents a single message exchanged using the IRC protocol.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// Nick returns the nickname part of the prefix: everything before the
// first '!', or the whole prefix for server-originated messages.
func (msg *Message) Nick() string {
	if i := strings.IndexByte(msg.Prefix, '!'); i >= 0 {
		return msg.Prefix[:i]
	}
	return msg.Prefix
}

// Param returns the i-th parameter or "" when there are fewer.
func (msg *Message) Param(i int) string {
	if i < 0 || i >= len(msg.Params) {
		return ""
	}
	return msg.Params[i]
}

// Parse decodes one line with the terminator already stripped.  It
// returns nil for an empty line and never fails otherwise: malformed
// input yields a message with empty or partial fields.
//
// Tokens are separated by runs of whitespace.  A token starting with
// ':' after the command starts the trailing parameter, which runs to
// the end of the line verbatim.
func Parse(line string) *Message {
	if line == "" {
		return nil
	}

	msg := &Message{}
	tok := tokenizer{line: line}

	if line[0] == ':' {
		prefix, _ := tok.next()
		msg.Prefix = prefix[1:]
	}

	msg.Command, _ = tok.next()

	for {
		param, ok := tok.next()
		if !ok {
			break
		}
		if param[0] == ':' {
			msg.Params = append(msg.Params, param[1:]+line[tok.pos:])
			break
		}
		msg.Params = append(msg.Params, param)
	}
	return msg
}

// PingToken implements the keepalive shortcut: a line whose first four
// characters are "PING" is answered with everything after the fifth
// character.  A prefixed PING does not match.
func PingToken(line string) (string, bool) {
	if !strings.HasPrefix(line, "PING") {
		return "", false
	}
	if len(line) <= 5 {
		return "", true
	}
	return line[5:], true
}

// tokenizer walks a line one whitespace-delimited token at a time.
type tokenizer struct {
	line string
	pos  int
}

func (t *tokenizer) next() (string, bool) {
	for t.pos < len(t.line) && isSpace(t.line[t.pos]) {
		t.pos++
	}
	if t.pos >= len(t.line) {
		return "", false
	}
	start := t.pos
	for t.pos < len(t.line) && !isSpace(t.line[t.pos]) {
		t.pos++
	}
	return t.line[start:t.pos], true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
