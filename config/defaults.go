package config

import (
	"slices"
	"strings"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, profile files, and environment variable loading.

const (
	// DefaultPort is the plain-text IRC port.
	DefaultPort = 6667

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultRealName is sent in USER when none is configured.
	DefaultRealName = "tinyirc user"

	// DefaultTick is how often the session calls Update.
	DefaultTick = 50 * time.Millisecond

	// DefaultPollTimeout bounds each non-blocking read.
	DefaultPollTimeout = time.Millisecond

	// DefaultConnTimeout is the TCP/SSH connection timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultEncoding leaves inbound text untouched.
	DefaultEncoding = "utf-8"

	// DefaultMaxReconnectAttempts is how many times to retry after the
	// server drops the connection (with --reconnect).
	DefaultMaxReconnectAttempts = 10

	// DefaultReconnectBackoff is the first delay between attempts.
	DefaultReconnectBackoff = 2 * time.Second

	// DefaultMaxReconnectBackoff caps the exponential backoff between
	// reconnection attempts.
	DefaultMaxReconnectBackoff = 60 * time.Second
)

// encodings are the display charsets the console can decode.
var encodings = []string{"utf-8", "latin1", "latin9", "cp1252", "cp437", "koi8-r"}

// Encodings lists the accepted --encoding values.
func Encodings() []string { return slices.Clone(encodings) }

// KnownEncoding reports whether name is an accepted --encoding value.
func KnownEncoding(name string) bool {
	return slices.Contains(encodings, strings.ToLower(name))
}
